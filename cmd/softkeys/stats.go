package softkeys

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/dasdy/softkeys/db"
	"github.com/spf13/cobra"
)

var topCount int

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print journaled key counts",
	Long:  `Print the most used keys and chords of every keyboard in the journal.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		prefs, _, err := loadPreferences()
		if err != nil {
			return err
		}

		j, err := openJournal(prefs.Storage, true)
		if err != nil {
			return err
		}
		defer j.storage.Close()

		names, err := j.storage.Keyboards()
		if err != nil {
			return fmt.Errorf("could not list keyboards: %w", err)
		}

		if prefs.Keyboard != "" {
			names = []string{prefs.Keyboard}
		}

		for _, name := range names {
			if err := printStats(cmd.OutOrStdout(), j, name); err != nil {
				return err
			}
		}

		return nil
	},
}

func printStats(out io.Writer, j *journal, name string) error {
	counts, err := j.storage.GatherAll(name)
	if err != nil {
		return fmt.Errorf("could not gather %s: %w", name, err)
	}

	slices.SortStableFunc(counts, func(a, b db.KeyCount) int { return cmp.Compare(b.Count, a.Count) })

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	fmt.Fprintf(out, "%s: %d presses\n", name, total)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tlabel\tcount")

	for _, c := range counts[:min(topCount, len(counts))] {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", c.Key, c.Label, c.Count)
	}

	combos := topCombos(j.combos, name, counts)
	if len(combos) > 0 {
		fmt.Fprintln(tw, "\nchord\t\tcount")

		for _, c := range combos[:min(topCount, len(combos))] {
			fmt.Fprintf(tw, "%v\t\t%d\n", c.Keys, c.Pressed)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not write table: %w", err)
	}

	fmt.Fprintln(out)

	return nil
}

// topCombos collects the chords of every counted key, without duplicates, most pressed
// first.
func topCombos(tracker db.Tracker, name string, counts []db.KeyCount) []db.Combo {
	seen := make(map[string]bool)

	var result []db.Combo

	for _, c := range counts {
		for _, combo := range tracker.GatherCombos(name, c.Key) {
			id := fmt.Sprint(combo.Keys)
			if seen[id] {
				continue
			}

			seen[id] = true
			result = append(result, combo)
		}
	}

	slices.SortStableFunc(result, func(a, b db.Combo) int {
		if c := cmp.Compare(b.Pressed, a.Pressed); c != 0 {
			return c
		}

		return slices.Compare(a.Keys, b.Keys)
	})

	return result
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVarP(&topCount, "top", "n", 10, "How many keys and chords to print per keyboard")
}
