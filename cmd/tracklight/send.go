package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	tracklight "github.com/tracklight/tracklight-go"
)

// sendOptions holds the flag values for the send command.
type sendOptions struct {
	configPath    string
	writeKey      string
	host          string
	flushAt       int
	flushInterval time.Duration
	timeout       time.Duration
	retryCount    int
	debug         bool
}

// inputEvent is one NDJSON line of input.
type inputEvent struct {
	Event       string         `json:"event"`
	UserID      any            `json:"userId"`
	AnonymousID any            `json:"anonymousId"`
	Properties  map[string]any `json:"properties"`
	Timestamp   time.Time      `json:"timestamp"`
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Read NDJSON events from a file or stdin and deliver them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runSend(cmd, opts, in)
		},
	}

	addSendFlags(cmd.Flags(), opts)
	return cmd
}

// addSendFlags registers the send command's flags on a flag set.
func addSendFlags(fs *pflag.FlagSet, opts *sendOptions) {
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.writeKey, "write-key", "", "collector write key")
	fs.StringVar(&opts.host, "host", "", "collector base URL")
	fs.IntVar(&opts.flushAt, "flush-at", 0, "maximum batch size")
	fs.DurationVar(&opts.flushInterval, "flush-interval", 0, "maximum wait before a forced flush")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout")
	fs.IntVar(&opts.retryCount, "retry-count", 0, "maximum retry attempts for transient failures")
	fs.BoolVar(&opts.debug, "debug", false, "log queue and flush decisions")
}

// buildConfig merges the config file (if any), environment and flags,
// with flags winning.
func buildConfig(opts *sendOptions) (*tracklight.Config, error) {
	cfg := &tracklight.Config{}
	if opts.configPath != "" {
		loaded, err := tracklight.LoadConfigFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.WriteKey == "" {
		cfg.WriteKey = os.Getenv(tracklight.EnvWriteKey)
	}
	if cfg.Host == "" {
		cfg.Host = os.Getenv(tracklight.EnvHost)
	}
	if opts.writeKey != "" {
		cfg.WriteKey = opts.writeKey
	}
	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.flushAt != 0 {
		cfg.FlushAt = opts.flushAt
	}
	if opts.flushInterval != 0 {
		cfg.FlushInterval = opts.flushInterval
	}
	if opts.timeout != 0 {
		cfg.Timeout = opts.timeout
	}
	if opts.retryCount != 0 {
		cfg.RetryCount = opts.retryCount
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func runSend(cmd *cobra.Command, opts *sendOptions, in io.Reader) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	client, err := tracklight.NewWithConfig(cfg)
	if err != nil {
		return err
	}

	var sent, failed int
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var ev inputEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: invalid JSON: %v\n", line, err)
			failed++
			continue
		}

		err := client.Track(tracklight.Track{
			Event:       ev.Event,
			UserID:      ev.UserID,
			AnonymousID: ev.AnonymousID,
			Properties:  ev.Properties,
			Timestamp:   ev.Timestamp,
		}, nil)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", line, err)
			failed++
			continue
		}
		sent++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := client.Close(); err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sent %d events, %d rejected\n", sent, failed)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the SDK version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tracklight.Version)
		},
	}
}
