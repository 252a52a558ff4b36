package main

import "testing"

func TestRootCmd_FlagsRegistered(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	for _, name := range []string{"port", "cert", "cert-password", "introspect-port"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not registered", name)
		}
	}
}

func TestRun_RequiresCert(t *testing.T) {
	certPath = ""
	if err := run(rootCmd, nil); err == nil {
		t.Fatal("expected error when --cert is missing")
	}
}
