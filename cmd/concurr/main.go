// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/concurr/concurr/internal/clientconfig"
	"github.com/concurr/concurr/internal/dispatch"
	"github.com/concurr/concurr/internal/shellexec"
	"github.com/concurr/concurr/internal/tlsmaterial"
	"github.com/concurr/concurr/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:                "concurr <command-template> [: <arg>...] [:: <file>...]",
	Short:              "fan a shell command out across local and remote worker slots",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	RunE:               run,
}

func run(cmd *cobra.Command, args []string) error {
	template, literals, files, err := parseArgs(args)
	if err != nil {
		return reportSetup(err)
	}

	cfg, err := clientconfig.Load()
	if err != nil {
		return reportSetup(err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{
		Level:   level,
		Format:  logging.FormatText,
		Output:  os.Stderr,
		Service: "concurr",
		Version: "dev",
	})

	inputs, err := resolveInputs(literals, files, shellexec.StdinRedirected(), os.Stdin)
	if err != nil {
		return reportSetup(err)
	}

	certsDir, err := certsDir()
	if err != nil {
		return reportSetup(err)
	}

	d := dispatch.New(logger)

	if cfg.Localhost {
		cores := d.RegisterLocal(template)
		logger.Info("local slots registered", "cores", cores)
	}

	var nodes []dispatch.Node
	for _, n := range cfg.Nodes {
		nodes = append(nodes, dispatch.Node{Address: n.Address, Domain: n.Domain})
	}
	if len(nodes) > 0 {
		tlsConfigFor := func(domain string) (*tls.Config, error) {
			cert, err := tlsmaterial.LoadNodeCertificate(certsDir, domain)
			if err != nil {
				return nil, err
			}
			return tlsmaterial.ClientTLSConfig(cert, domain), nil
		}
		if err := d.Register(nodes, tlsConfigFor, template); err != nil {
			return reportSetup(err)
		}
	}

	total := dispatch.Feed(d.Jobs, inputs)

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background(), stop) }()

	start := time.Now()
	var stdout bytes.Buffer
	d.Drain(&stdout, os.Stderr, total)
	os.Stdout.Write(stdout.Bytes())
	close(stop)

	if err := <-done; err != nil {
		logger.Error("dispatcher stopped with error", "error", err)
	}

	if cfg.Verbose {
		printRunSummary(os.Stderr, total, time.Since(start))
	}
	return nil
}

func certsDir() (string, error) {
	dir, err := clientconfig.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "certs"), nil
}

func reportSetup(err error) error {
	fmt.Fprintln(os.Stderr, "concurr:", err)
	os.Exit(1)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
