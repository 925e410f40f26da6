// Command enroll creates an operator TOTP key for the telegram channel.
// The key goes to the OPERATOR_KEY env or telegram.operator_key, the QR
// code is scanned with an authenticator app.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Farengier/usernotes-bot/internal/img"
	"github.com/jltorresm/otpgo"
	log "github.com/sirupsen/logrus"
)

const totpIssuer = "usernotes-bot"

var (
	account *string
	out     *string
)

func init() {
	account = flag.String("account", "operator", "account name shown in the authenticator app")
	out = flag.String("out", "qr.png", "QR code output path")
}

func main() {
	flag.Parse()

	if err := enroll(*account, *out); err != nil {
		log.Errorf("[Enroll] %s", err)
		os.Exit(1)
	}
}

func enroll(account, path string) error {
	totp := otpgo.TOTP{}
	if _, err := totp.Generate(); err != nil {
		return fmt.Errorf("key generate failed: %w", err)
	}

	qrcode, err := totp.KeyUri(account, totpIssuer).QRCode()
	if err != nil {
		return fmt.Errorf("qr generate failed: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("file open failed: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := img.WritePNG(f, qrcode); err != nil {
		return fmt.Errorf("file write failed: %w", err)
	}

	fmt.Printf("OPERATOR_KEY=%s\n", totp.Key)
	fmt.Printf("QR code written to %s\n", path)
	return nil
}
