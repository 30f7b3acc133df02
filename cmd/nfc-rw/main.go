// Copyright 2026 The nfc-rw Authors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command nfc-rw reads and writes NTAG21x tags on a PC/SC NFC reader.
//
// With no mode flags it runs an interactive loop of single-character
// commands; with -url, -text or -data it writes once to the next
// presented tag and exits. -copy N repeats the write across N tags,
// -read reads one tag, -monitor reads every tag until interrupted.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"

	nfcrw "github.com/danielrosehill/nfc-rw"
	"github.com/danielrosehill/nfc-rw/copier"
	"github.com/danielrosehill/nfc-rw/pkg/ndef"
	"github.com/danielrosehill/nfc-rw/polling"
	"github.com/danielrosehill/nfc-rw/transport/pcsc"
)

type config struct {
	reader    string
	writeURL  string
	writeText string
	writeData string
	copies    int
	readOnce  bool
	monitor   bool
	lock      bool
	noClip    bool
	debug     bool
}

// Package-level flag variables
var (
	flagReader    string
	flagWriteURL  string
	flagWriteText string
	flagWriteData string
	flagCopies    int
	flagReadOnce  bool
	flagMonitor   bool
	flagLock      bool
	flagNoClip    bool
	flagDebug     bool
)

func init() {
	flag.StringVar(&flagReader, "reader", "", "Substring of the PC/SC reader name to use (auto-detect if empty)")
	flag.StringVar(&flagWriteURL, "url", "", "URL to write to the next scanned tag (exits after write)")
	flag.StringVar(&flagWriteText, "text", "", "Text to write to the next scanned tag (exits after write)")
	flag.StringVar(&flagWriteData, "data", "", "Raw hex bytes to write to user memory (exits after write)")
	flag.IntVar(&flagCopies, "copy", 1, "Number of tags to write the same content to")
	flag.BoolVar(&flagReadOnce, "read", false, "Read the next scanned tag and exit")
	flag.BoolVar(&flagMonitor, "monitor", false, "Continuously read every tag placed on the reader")
	flag.BoolVar(&flagLock, "lock", false, "Permanently lock each tag after writing (cannot be undone)")
	flag.BoolVar(&flagNoClip, "no-clipboard", false, "Do not copy read URLs/UIDs to the clipboard")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func parseConfig() (*config, error) {
	cfg := &config{
		reader:    flagReader,
		writeURL:  flagWriteURL,
		writeText: flagWriteText,
		writeData: flagWriteData,
		copies:    flagCopies,
		readOnce:  flagReadOnce,
		monitor:   flagMonitor,
		lock:      flagLock,
		noClip:    flagNoClip,
		debug:     flagDebug,
	}

	if cfg.debug {
		nfcrw.SetDebugEnabled(true)
	}

	set := 0
	for _, s := range []string{cfg.writeURL, cfg.writeText, cfg.writeData} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("-url, -text and -data are mutually exclusive")
	}
	if cfg.readOnce && set > 0 {
		return nil, errors.New("-read cannot be combined with a write flag")
	}
	if cfg.monitor && (cfg.readOnce || set > 0) {
		return nil, errors.New("-monitor cannot be combined with -read or a write flag")
	}
	if cfg.copies < 1 {
		return nil, fmt.Errorf("-copy must be at least 1, got %d", cfg.copies)
	}
	return cfg, nil
}

// writeMessage builds the NDEF message a write flag asked for, or nil
// when no write flag is set.
func (cfg *config) writeMessage() (*ndef.Message, error) {
	switch {
	case cfg.writeURL != "":
		return ndef.NewURIMessage(cfg.writeURL), nil
	case cfg.writeText != "":
		return ndef.NewTextMessage(cfg.writeText, ""), nil
	case cfg.writeData != "":
		data, err := parseHex(cfg.writeData)
		if err != nil {
			return nil, err
		}
		return &ndef.Message{Records: []ndef.Record{{TNF: ndef.TNFUnknown, Payload: data}}}, nil
	default:
		return nil, nil
	}
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ':' || r == '-' {
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty hex data")
	}
	return data, nil
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			_, _ = fmt.Println("\nShutting down.")
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config) error {
	reader, err := pcsc.Open(cfg.reader)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close reader: %v\n", err)
		}
	}()

	_, _ = fmt.Printf("Reader: %s (%s)\n", reader.Model(), reader.Name())

	msg, err := cfg.writeMessage()
	if err != nil {
		return err
	}
	if msg != nil {
		return runBatch(ctx, reader, cfg, msg)
	}
	if cfg.readOnce {
		return cmdRead(ctx, reader, cfg)
	}
	if cfg.monitor {
		return runMonitor(ctx, reader, cfg)
	}
	return runInteractive(ctx, reader, cfg)
}

// runBatch writes msg to cfg.copies tags and exits.
func runBatch(ctx context.Context, reader *pcsc.Reader, cfg *config, msg *ndef.Message) error {
	c := copier.New(reader)
	c.Lock = cfg.lock
	c.OnProgress = func(p copier.Progress) {
		if p.Err != nil {
			_, _ = fmt.Printf("Tag %s: %s failed: %v\n", p.UID, p.Step, p.Err)
			return
		}
		_, _ = fmt.Printf("Tag %s written (%d/%d)\n", p.UID, p.Written, p.Target)
	}

	if cfg.copies == 1 {
		_, _ = fmt.Println("Place a tag on the reader...")
	} else {
		_, _ = fmt.Printf("Writing %d tags. Place the first tag on the reader...\n", cfg.copies)
	}

	result, err := c.Run(ctx, msg, cfg.copies)
	if result != nil && result.Failed > 0 {
		_, _ = fmt.Printf("%d tag(s) failed.\n", result.Failed)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Printf("Done: %d tag(s) written.\n", result.Written)
	return nil
}

// runInteractive reads single-character commands from stdin.
func runInteractive(ctx context.Context, reader *pcsc.Reader, cfg *config) error {
	_, _ = fmt.Println("Commands: r=read  u=write URL  t=write text  w=write hex  c=batch copy  q=quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest := line[:1], strings.TrimSpace(line[1:])

		var err error
		switch strings.ToLower(cmd) {
		case "q":
			return nil
		case "r":
			err = cmdRead(ctx, reader, cfg)
		case "u":
			err = cmdWriteURL(ctx, reader, cfg, rest, scanner)
		case "t":
			err = cmdWriteText(ctx, reader, cfg, rest, scanner)
		case "w":
			err = cmdWriteHex(ctx, reader, cfg, rest, scanner)
		case "c":
			err = cmdCopy(ctx, reader, cfg, rest, scanner)
		default:
			_, _ = fmt.Printf("Unknown command %q\n", cmd)
			continue
		}

		if err != nil {
			if errors.Is(err, context.Canceled) || nfcrw.IsFatal(err) {
				return err
			}
			_, _ = fmt.Printf("Failed: %v\n", err)
		}
	}
}

// withTag waits for the next tag, runs fn against it and closes the
// session.
func withTag(ctx context.Context, reader *pcsc.Reader, fn func(*nfcrw.Tag) error) error {
	_, _ = fmt.Println("Place a tag on the reader...")
	tag, err := reader.WaitForTag(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tag.Close() }()
	return fn(tag)
}

func cmdRead(ctx context.Context, reader *pcsc.Reader, cfg *config) error {
	return withTag(ctx, reader, func(tag *nfcrw.Tag) error {
		return printTag(ctx, cfg, tag)
	})
}

// runMonitor polls the reader continuously and prints every tag placed
// on it until interrupted or the reader is lost.
func runMonitor(ctx context.Context, source polling.TagSource, cfg *config) error {
	session := polling.NewSession(source, polling.DefaultConfig())
	defer func() { _ = session.Close() }()

	session.OnTag = func(ctx context.Context, tag *nfcrw.Tag) error {
		return printTag(ctx, cfg, tag)
	}
	session.OnRemoved = func() {
		_, _ = fmt.Println("Tag removed - ready for the next tag...")
	}
	session.OnError = func(err error) {
		_, _ = fmt.Printf("Failed: %v\n", err)
	}

	_, _ = fmt.Println("Monitoring for tags. Press Ctrl+C to stop...")
	return session.Start(ctx)
}

// printTag reports one tag's identity, lock state and decoded content.
func printTag(ctx context.Context, cfg *config, tag *nfcrw.Tag) error {
	_, _ = fmt.Printf("Tag: UID=%s Type=%s Capacity=%d bytes\n",
		tag.UIDString(), tag.Type(), tag.Capacity())

	locked, err := tag.Locked(ctx)
	if err == nil && locked {
		_, _ = fmt.Println("Tag is write-locked.")
	}

	msg, err := tag.ReadNDEF(ctx)
	if errors.Is(err, ndef.ErrNoNDEFMessage) {
		_, _ = fmt.Println("Tag is empty.")
		copyToClipboard(cfg, tag.UIDString(), "UID")
		return nil
	}
	if err != nil {
		return err
	}

	for i := range msg.Records {
		printRecord(cfg, i, &msg.Records[i])
	}
	return nil
}

func printRecord(cfg *config, index int, rec *ndef.Record) {
	if uri, err := rec.URI(); err == nil {
		_, _ = fmt.Printf("Record %d: URL %s\n", index, uri)
		copyToClipboard(cfg, uri, "URL")
		return
	}
	if text, err := rec.Text(); err == nil {
		_, _ = fmt.Printf("Record %d: text (%s) %q\n", index, text.Language, text.Text)
		copyToClipboard(cfg, text.Text, "text")
		return
	}
	_, _ = fmt.Printf("Record %d: TNF=%d type=%q payload=% X\n", index, rec.TNF, rec.Type, rec.Payload)
}

func copyToClipboard(cfg *config, value, what string) {
	if cfg.noClip {
		return
	}
	if err := clipboard.WriteAll(value); err != nil {
		nfcrw.Debugf("clipboard: %v", err)
		return
	}
	_, _ = fmt.Printf("Copied %s to clipboard.\n", what)
}

// prompt returns arg if non-empty, otherwise asks for a line of input.
func prompt(scanner *bufio.Scanner, arg, question string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	_, _ = fmt.Print(question)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("input closed")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func cmdWriteURL(ctx context.Context, reader *pcsc.Reader, cfg *config, arg string, scanner *bufio.Scanner) error {
	url, err := prompt(scanner, arg, "URL: ")
	if err != nil {
		return err
	}
	if url == "" {
		return errors.New("no URL given")
	}
	return writeMessage(ctx, reader, cfg, ndef.NewURIMessage(url))
}

func cmdWriteText(ctx context.Context, reader *pcsc.Reader, cfg *config, arg string, scanner *bufio.Scanner) error {
	text, err := prompt(scanner, arg, "Text: ")
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("no text given")
	}
	return writeMessage(ctx, reader, cfg, ndef.NewTextMessage(text, ""))
}

func cmdWriteHex(ctx context.Context, reader *pcsc.Reader, cfg *config, arg string, scanner *bufio.Scanner) error {
	raw, err := prompt(scanner, arg, "Hex bytes: ")
	if err != nil {
		return err
	}
	data, err := parseHex(raw)
	if err != nil {
		return err
	}
	return writeMessage(ctx, reader, cfg,
		&ndef.Message{Records: []ndef.Record{{TNF: ndef.TNFUnknown, Payload: data}}})
}

func cmdCopy(ctx context.Context, reader *pcsc.Reader, cfg *config, arg string, scanner *bufio.Scanner) error {
	count, err := prompt(scanner, arg, "How many tags? ")
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(count)
	if err != nil || quantity < 1 {
		return fmt.Errorf("invalid quantity %q", count)
	}

	url, err := prompt(scanner, "", "URL to write: ")
	if err != nil {
		return err
	}
	if url == "" {
		return errors.New("no URL given")
	}

	copyCfg := *cfg
	copyCfg.copies = quantity
	return runBatch(ctx, reader, &copyCfg, ndef.NewURIMessage(url))
}

// writeMessage writes one message to the next presented tag, optionally
// locking it, and reports how far a failed write got.
func writeMessage(ctx context.Context, reader *pcsc.Reader, cfg *config, msg *ndef.Message) error {
	return withTag(ctx, reader, func(tag *nfcrw.Tag) error {
		_, _ = fmt.Printf("Writing to tag %s...\n", tag.UIDString())

		if err := tag.WriteNDEF(ctx, msg); err != nil {
			var we *nfcrw.WriteError
			if errors.As(err, &we) {
				return fmt.Errorf("write stopped at page %d after %d bytes: %w",
					we.Page, we.BytesWritten, err)
			}
			return err
		}
		_, _ = fmt.Println("Write OK.")

		if cfg.lock {
			if err := tag.Lock(ctx); err != nil {
				return fmt.Errorf("locking: %w", err)
			}
			_, _ = fmt.Println("Tag locked (permanent).")
		}
		return nil
	})
}
