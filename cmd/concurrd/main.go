// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/concurr/concurr/internal/introspect"
	"github.com/concurr/concurr/internal/server"
	"github.com/concurr/concurr/internal/tlsmaterial"
	"github.com/concurr/concurr/pkg/logging"
)

var (
	port            int
	certPath        string
	certPassword    string
	introspectPort  int
	logger          = logging.NewLogger(logging.DefaultConfig())

	rootCmd = &cobra.Command{
		Use:   "concurrd",
		Short: "concurr worker node",
		Long:  "concurrd accepts command registrations and subprocess inputs from concurr clients over TLS.",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().IntVarP(&port, "port", "p", 31514, "wire protocol listen port")
	rootCmd.Flags().StringVar(&certPath, "cert", "", "PKCS#12 identity bundle (required)")
	rootCmd.Flags().StringVar(&certPassword, "cert-password", "", "PKCS#12 bundle password")
	rootCmd.Flags().IntVar(&introspectPort, "introspect-port", 31515, "registry introspection HTTP port (0 disables)")
}

func run(cmd *cobra.Command, args []string) error {
	if certPath == "" {
		return fmt.Errorf("--cert is required")
	}

	identity, err := tlsmaterial.LoadServerIdentity(certPath, certPassword)
	if err != nil {
		logger.Error("loading server identity", "error", err)
		os.Exit(1)
	}
	tlsConfig := tlsmaterial.ServerTLSConfig(identity)

	srv := server.New(logger)

	if introspectPort != 0 {
		introspectAddr := fmt.Sprintf("127.0.0.1:%d", introspectPort)
		introspectSrv := introspect.New(srv.Registry, logger.With("component", "introspect"))
		go func() {
			if err := introspectSrv.ListenAndServe(introspectAddr); err != nil {
				logger.Error("introspection server stopped", "error", err)
			}
		}()
		logger.Info("introspection listening", "addr", introspectAddr)
	}

	addr := fmt.Sprintf(":%d", port)
	return srv.ListenAndServe(addr, tlsConfig)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
