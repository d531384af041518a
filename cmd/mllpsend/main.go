// mllpsend frames an HL7 message and delivers it to an MLLP listener,
// printing the acknowledgment it gets back. Useful for smoke-testing a
// routing-log deployment without a full interface engine.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/restlets/hl7-routing-log/internal/hl7"
	"github.com/restlets/hl7-routing-log/internal/mllp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr    string
		file    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "mllpsend",
		Short:         "Send an HL7 message over MLLP and print the acknowledgment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := readMessage(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, err := mllp.NewClient(addr, timeout)
			if err != nil {
				return err
			}

			ack, err := client.Send(cmd.Context(), message)
			if err != nil {
				return fmt.Errorf("send to %s: %w", addr, err)
			}

			code, err := hl7.ParseAckCode(ack)
			if err != nil {
				return fmt.Errorf("unreadable acknowledgment: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ack)
			if !code.IsPositive() {
				return fmt.Errorf("message rejected with %s", code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7001", "MLLP listener address (host:port)")
	cmd.Flags().StringVar(&file, "file", "", "read the HL7 message from this file instead of stdin")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-send dial and read timeout")

	return cmd
}

func readMessage(file string, stdin io.Reader) (string, error) {
	var raw []byte
	var err error

	if file != "" {
		raw, err = os.ReadFile(file)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}

	message := strings.TrimRight(string(raw), "\r\n")
	if message == "" {
		return "", fmt.Errorf("message is empty")
	}
	return message, nil
}
