// Package main writes a self-signed certificate and key for running the web
// front-end with -tls-cert and -tls-key in local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/practicelog/internal/certgen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma separated DNS names and IPs")
	certPath := fs.String("cert", "certs/server.crt", "certificate output path")
	keyPath := fs.String("key", "certs/server.key", "key output path")
	validFor := fs.Duration("valid-for", certgen.DefaultValidity, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	certPEM, keyPEM, err := certgen.SelfSigned(names, *validFor)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(*certPath, *keyPath, certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Printf("Certificate written to %s (key %s), valid until %s\n",
		*certPath, *keyPath, time.Now().Add(*validFor).Format(time.DateOnly))
	return nil
}
