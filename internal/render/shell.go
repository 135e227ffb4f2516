package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// CreateMarketSignature is the factory function every artifact calls.
const CreateMarketSignature = "createMarket(string,uint256)"

// ShellRenderer emits a bash script of `cast send` calls.
type ShellRenderer struct {
	cfg *DeployConfig
}

// NewShellRenderer creates a shell renderer.
func NewShellRenderer(cfg *DeployConfig) *ShellRenderer {
	return &ShellRenderer{cfg: cfg}
}

// Format returns "bash".
func (r *ShellRenderer) Format() string { return FormatBash }

// ContentType returns the MIME type of the artifact.
func (r *ShellRenderer) ContentType() string { return "text/x-shellscript; charset=utf-8" }

// Render writes one announcement, one cast call and one sleep per market.
func (r *ShellRenderer) Render(w io.Writer, markets []types.ValidatedMarket) error {
	var b strings.Builder

	b.WriteString("#!/bin/bash\n")
	if r.cfg.EnvFile != "" {
		fmt.Fprintf(&b, "source %s\n", r.cfg.EnvFile)
	}
	b.WriteString("export PATH=\"$HOME/.foundry/bin:$PATH\"\n")
	fmt.Fprintf(&b, "FACTORY=%s\n", r.cfg.Factory.Hex())
	b.WriteString("\n")

	for _, m := range markets {
		fmt.Fprintf(&b, "echo \"Creating: %s\"\n", m.Title)
		fmt.Fprintf(&b, "cast send $FACTORY %q \"%s\" %d --rpc-url $%s --private-key $%s",
			CreateMarketSignature, m.Title, m.Duration, r.cfg.RPCURLVar, r.cfg.PrivateKeyVar)
		if r.cfg.GasLimit > 0 {
			fmt.Fprintf(&b, " --gas-limit %d", r.cfg.GasLimit)
		}
		b.WriteString("\n")
		if r.cfg.CallDelay > 0 {
			fmt.Fprintf(&b, "sleep %s\n", strconv.FormatFloat(r.cfg.CallDelay.Seconds(), 'f', -1, 64))
		}
		b.WriteString("\n")
	}

	return writeString(w, b.String())
}

// RenderFailure writes a script that reports the error and exits non-zero.
func (r *ShellRenderer) RenderFailure(w io.Writer, err error) error {
	return writeString(w, fmt.Sprintf("#!/bin/bash\n# Error: %s\necho \"market generation failed, see header\" >&2\nexit 1\n", oneLine(err)))
}
