package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/pipeline"
	"github.com/ignite/creative-catalog/internal/traits"
)

func classifyCmd() *cobra.Command {
	var (
		limit         int
		dryRun        bool
		newCategories bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Tag downloaded images with creative traits",
		Long: `Send each downloaded image without traits to the vision model and store
the validated trait assignment on its record. Replies that do not match
the creative framework are discarded and reported.

After categories are added to the framework, --new-categories asks the
model only for the categories each analyzed ad lacks and adds the answers
to its existing traits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, _, err := openCatalog(ctx)
			if err != nil {
				return err
			}

			var fw *traits.Framework
			if newCategories || !dryRun {
				if fw, err = traits.LoadFramework(cfg.Traits.FrameworkPath); err != nil {
					return err
				}
			}

			if dryRun {
				pending := pipeline.PendingClassification(store)
				if newCategories {
					pending = pipeline.PendingNewCategories(store, fw)
				}
				fmt.Fprintf(out, "%d records waiting for classification\n", len(pending))
				for _, rec := range pending {
					if newCategories {
						fmt.Fprintf(out, "  %s (missing: %s)\n", rec.Key(), strings.Join(rec.MissingTraits(fw.Names()), ", "))
						continue
					}
					fmt.Fprintf(out, "  %s\n", rec.Key())
				}
				return nil
			}

			prompts, err := traits.LoadPromptBuilder(cfg.Traits.PromptTemplatePath)
			if err != nil {
				return err
			}
			model, err := traits.NewBedrockModel(ctx, cfg.Traits)
			if err != nil {
				return err
			}
			classifier, err := traits.NewClassifier(fw, prompts, model)
			if err != nil {
				return err
			}

			summary, runErr := pipeline.ClassifyRun(ctx, store, classifier, pipeline.ClassifyOptions{
				Delay:         cfg.Traits.Delay(),
				Limit:         limit,
				NewCategories: newCategories,
				Progress:      newProgress(store.Len(), "Classifying images"),
			})
			return finish(out, "Classification", cfg.Reports.Unanalyzed, summary, runErr)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many model calls (0 means no limit)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list records that would be classified without calling the model")
	cmd.Flags().BoolVar(&newCategories, "new-categories", false, "add framework categories missing from already analyzed records")
	return cmd
}
