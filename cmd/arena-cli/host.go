package main

import (
	"bufio"
	"fmt"
	"strings"
)

// termHost drives the host-platform contract from the terminal: it
// prints the invoice link and reads the terminal payment status from
// stdin. Good enough to exercise the purchase flow against a real
// backend.
type termHost struct {
	in *bufio.Reader
}

func (h *termHost) Ready() error {
	if h.in == nil {
		return fmt.Errorf("no input attached")
	}
	return nil
}

func (h *termHost) SupportsInvoices() bool { return true }

func (h *termHost) OpenInvoice(link string, cb func(status string)) error {
	fmt.Printf("open this invoice in Telegram:\n  %s\n", link)
	fmt.Print("terminal status [paid/cancelled/failed]: ")
	line, err := h.in.ReadString('\n')
	if err != nil {
		return err
	}
	status := strings.TrimSpace(line)
	if status == "" {
		status = "cancelled"
	}
	cb(status)
	return nil
}

func (h *termHost) ShowAlert(msg string) {
	fmt.Println(msg)
}
