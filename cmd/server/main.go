package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/credsec/internal/server"
	"github.com/dmitrijs2005/credsec/internal/server/config"
)

// promptPassphrase reads the encryption passphrase from the terminal without
// echoing it. Fails when stdin is not a terminal.
func promptPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("encryption passphrase is not configured and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Encryption passphrase: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pass), nil
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.EncryptionPassphrase == "" {
		pass, err := promptPassphrase()
		if err != nil {
			log.Printf("%v", err)
			return
		}
		cfg.EncryptionPassphrase = pass
	}

	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
