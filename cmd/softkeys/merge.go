package softkeys

import (
	"fmt"
	"os"

	"github.com/dasdy/softkeys/db"
	"github.com/spf13/cobra"
)

var (
	mergeInputs []string
	mergeOutput string
)

// mergeCmd represents the merge command.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge journals into one",
	Long:  `Given several journal files, create a new one which is the union of their dispatches and chords.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if len(mergeInputs) == 0 {
			return fmt.Errorf("no input files given")
		}

		if _, err := os.Stat(mergeOutput); err == nil {
			return fmt.Errorf("output file %s already exists", mergeOutput)
		}

		inputs := make([]db.Storage, 0, len(mergeInputs))

		defer func() {
			for _, in := range inputs {
				in.Close()
			}
		}()

		for _, fn := range mergeInputs {
			store, err := db.NewStorageFromPath(fn, true)
			if err != nil {
				return err
			}

			inputs = append(inputs, store)
		}

		output, err := db.NewStorageFromPath(mergeOutput, false)
		if err != nil {
			return err
		}
		defer output.Close()

		return db.Merge(inputs, output)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringSliceVarP(&mergeInputs, "file", "f", []string{},
		"List of journals to merge")
	mergeCmd.Flags().StringVarP(&mergeOutput, "out", "o", "./merged.sqlite",
		"Output path for the merged journal")
}
