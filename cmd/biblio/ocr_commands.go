package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"biblioaccess/internal/client"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/ocr"
	"biblioaccess/internal/session"
)

func newOCRCommand(ctx *commandContext) *cobra.Command {
	ocrCmd := &cobra.Command{
		Use:   "ocr",
		Short: "Process documents and review the extracted text",
	}

	ocrCmd.AddCommand(newOCRProcessCommand(ctx))
	ocrCmd.AddCommand(newOCRViewCommand(ctx))
	ocrCmd.AddCommand(newOCREditCommand(ctx))
	ocrCmd.AddCommand(newOCRStatsCommand(ctx))
	ocrCmd.AddCommand(newOCRClearCommand(ctx))

	return ocrCmd
}

func newOCRProcessCommand(ctx *commandContext) *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Run OCR on a document and keep the result for review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && taskID == 0 {
				return errors.New("pass a file path or --task")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withClient(func(apiClient *client.Client, sess *session.Store) error {
				path := ""
				if len(args) > 0 {
					path = args[0]
				}
				if taskID != 0 {
					downloaded, err := apiClient.Download(cmd.Context(), taskID, os.TempDir())
					if err != nil {
						return err
					}
					defer os.Remove(downloaded)
					path = downloaded
				}

				processor, err := ocr.NewProcessor(cfg, logging.NewNop())
				if err != nil {
					return err
				}
				doc, err := processor.Process(cmd.Context(), path)
				if err != nil {
					return err
				}
				if err := sess.SaveDocument(cmd.Context(), doc); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed %s: %d pages, %d words\n",
					doc.Metadata.FileName,
					doc.Metadata.TotalPages,
					doc.Metadata.Statistics.TotalWords)
				fmt.Fprintln(out, "Run `biblio ocr view` to review the text")
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&taskID, "task", "t", 0, "Process the document attached to a task")
	return cmd
}

func newOCRViewCommand(ctx *commandContext) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show a page of the document under review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReview(ctx, func(review *ocr.Review) error {
				if page > 0 && !review.GoToPage(page) {
					return fmt.Errorf("page %d is out of range (1-%d)", page, review.TotalPages())
				}
				current := review.CurrentPage()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Page %d of %d (confidence %.2f, %d words)\n\n",
					review.PageNumber(), review.TotalPages(), current.Confidence, current.Words)
				fmt.Fprintln(out, current.Text)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number (defaults to the first page)")
	return cmd
}

func newOCREditCommand(ctx *commandContext) *cobra.Command {
	var page int
	var text string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Replace the text of one page and recompute statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && fromFile == "" {
				return errors.New("pass --text or --from-file")
			}
			if fromFile != "" {
				raw, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				text = string(raw)
			}
			return withReview(ctx, func(review *ocr.Review) error {
				if page > 0 && !review.GoToPage(page) {
					return fmt.Errorf("page %d is out of range (1-%d)", page, review.TotalPages())
				}
				review.StartEditing()
				review.SetDraft(text)
				if err := review.SaveChanges(cmd.Context()); err != nil {
					return err
				}
				current := review.CurrentPage()
				fmt.Fprintf(cmd.OutOrStdout(), "Saved page %d (%d words)\n",
					review.PageNumber(), current.Words)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number (defaults to the first page)")
	cmd.Flags().StringVar(&text, "text", "", "Replacement text for the page")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read the replacement text from a file")
	return cmd
}

func newOCRStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for the document under review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReview(ctx, func(review *ocr.Review) error {
				doc := review.Document()
				stats := doc.Metadata.Statistics
				rows := [][]string{
					{"File", doc.Metadata.FileName},
					{"Pages", fmt.Sprintf("%d", doc.Metadata.TotalPages)},
					{"Characters", fmt.Sprintf("%d", stats.TotalCharacters)},
					{"Words", fmt.Sprintf("%d", stats.TotalWords)},
					{"Chars per page", fmt.Sprintf("%.1f", stats.AverageCharactersPerPage)},
					{"Words per page", fmt.Sprintf("%.1f", stats.AverageWordsPerPage)},
					{"Confidence", fmt.Sprintf("%.2f", stats.AverageConfidence)},
				}
				table := renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newOCRClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the document under review",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			if err := sess.ClearDocument(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Review document discarded")
			return nil
		},
	}
}

// withReview loads the persisted review document and hands a review buffer to
// fn. Edits are saved back through the session store.
func withReview(ctx *commandContext, fn func(*ocr.Review) error) error {
	sess, err := ctx.ensureSession()
	if err != nil {
		return err
	}
	doc, err := sess.Document()
	if err != nil {
		return err
	}
	if doc == nil {
		return errors.New("no document under review; run `biblio ocr process` first")
	}
	review, err := ocr.NewReview(doc, sess)
	if err != nil {
		return err
	}
	return fn(review)
}
