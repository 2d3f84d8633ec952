package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"debugctx"
	"debugctx/internal/render"
	"debugctx/internal/scope"
)

var extractJSON bool

var errNoContext = errors.New("no DebugContext block found")

// extractCmd prints the raw contexts stack
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the contexts stack appended to a failure message",
	Long: `Reads a failure message from file, or from stdin when file is omitted
or "-", and prints the text between the DebugContext markers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

// showCmd renders the contexts stack for a terminal
var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render the contexts stack of a failure message, one box per layer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func readMessage(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return string(data), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(cmd, args)
	if err != nil {
		return err
	}
	text, ok := debugctx.ExtractAddedText(msg)
	if !ok {
		return errNoContext
	}
	logger.Debug("Extracted contexts stack", zap.Int("bytes", len(text)))

	if !extractJSON || text == debugctx.DisabledText {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	layers, ok := render.FromText(text)
	if !ok {
		return fmt.Errorf("malformed contexts stack")
	}
	out := make([]map[string]*scope.Context, 0, len(layers))
	for _, l := range layers {
		out = append(out, map[string]*scope.Context{l.Label: l.Context})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode layers: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	msg, err := readMessage(cmd, args)
	if err != nil {
		return err
	}
	text, ok := debugctx.ExtractAddedText(msg)
	if !ok {
		return errNoContext
	}
	if text == debugctx.DisabledText {
		fmt.Fprintln(cmd.OutOrStdout(), emptyStyle.Render(text))
		return nil
	}
	layers, ok := render.FromText(text)
	if !ok {
		return fmt.Errorf("malformed contexts stack")
	}
	logger.Debug("Rendering layers", zap.Int("layers", len(layers)))
	fmt.Fprintln(cmd.OutOrStdout(), renderLayers(layers))
	return nil
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyStyle = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderLayers(layers render.Layers) string {
	if len(layers) == 0 {
		return emptyStyle.Render("(no context)")
	}
	boxes := make([]string, 0, len(layers))
	for _, l := range layers {
		var body strings.Builder
		body.WriteString(labelStyle.Render(l.Label))
		if l.Context.Len() == 0 {
			body.WriteString("\n" + emptyStyle.Render("(empty)"))
		}
		for k, v := range l.Context.All() {
			body.WriteString("\n" + keyStyle.Render(k) + " = " + formatValue(v))
		}
		boxes = append(boxes, boxStyle.Render(body.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func formatValue(v any) string {
	if raw, ok := v.(json.RawMessage); ok {
		return string(raw)
	}
	return string(scope.EncodeValue(v))
}
