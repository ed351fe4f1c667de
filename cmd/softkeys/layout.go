package softkeys

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dasdy/softkeys/config"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	allKeyboards bool
	zmkInfoFile  string
)

// layoutCmd represents the layout command.
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print computed key geometry",
	Long: `Compute the key rectangles of a keyboard for the configured size and print them.
With --zmk-info, convert the physical layout of a ZMK info.json into a layout document instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if zmkInfoFile != "" {
			return convertZmkInfo(cmd.OutOrStdout(), zmkInfoFile)
		}

		prefs, doc, err := loadPreferences()
		if err != nil {
			return err
		}

		names := []string{prefs.Keyboard}

		switch {
		case allKeyboards:
			names = doc.Names()
		case prefs.Keyboard == "":
			names = []string{doc.DefaultName()}
		}

		for _, name := range names {
			if err := printKeyboard(cmd.OutOrStdout(), doc, name, prefs); err != nil {
				return err
			}
		}

		return nil
	},
}

func printKeyboard(out io.Writer, doc *layout.Document, name string, prefs config.Preferences) error {
	res, err := layout.Build(doc, name, prefs.Width, prefs.Height, prefs.Landscape)
	if err != nil {
		return fmt.Errorf("could not build %s: %w", name, err)
	}

	if res.Warnings != nil {
		slog.WarnContext(logCtx, "Layout has problems", "keyboard", name, "warnings", res.Warnings)
	}

	opts := prefs.KeyboardOptions()
	if def, ok := doc.Keyboard(name); ok && def.LabelUppercase {
		opts.LabelUppercase = true
	}

	kb := keyboard.New(name, res, opts)

	fmt.Fprintf(out, "%s: %dx%d, %d keys\n", kb.Name(), kb.Width(), kb.Height(), kb.Len())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tlabel\tx\ty\tw\th\tedges")

	for i, k := range kb.Keys() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			i, kb.LabelFor(i, model.EngineFlags{}), k.X, k.Y, k.W, k.H, edges(k.Edges))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not write table: %w", err)
	}

	fmt.Fprintln(out)

	return nil
}

func edges(e model.EdgeFlags) string {
	out := ""

	for _, f := range []struct {
		flag   model.EdgeFlags
		letter string
	}{
		{model.EdgeLeft, "L"},
		{model.EdgeTop, "T"},
		{model.EdgeRight, "R"},
		{model.EdgeBottom, "B"},
	} {
		if e.Has(f.flag) {
			out += f.letter
		}
	}

	if out == "" {
		return "-"
	}

	return out
}

func convertZmkInfo(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	kb, err := layout.LoadZmkInfo(f)
	if err != nil {
		return err
	}

	name := kb.Name
	if name == "" {
		name = "zmk"
	}

	kb.Name = ""

	doc := layout.Document{Default: name, Keyboards: map[string]layout.KeyboardDef{name: *kb}}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("could not encode layout: %w", err)
	}

	return encoder.Close()
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().BoolVar(&allKeyboards, "all", false, "Print every keyboard of the document")
	layoutCmd.Flags().StringVar(&zmkInfoFile, "zmk-info", "", "Convert a ZMK info.json into a layout document")
}
