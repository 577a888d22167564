package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
	"github.com/Shiki0138/leadfive-sub000/internal/post"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Get a featured image without writing a post",
	RunE:  runImage,
}

var (
	imageTitle   string
	imageKeyword string
	imageDate    string
	imageSlug    string
	imageJSON    bool
)

func init() {
	imageCmd.Flags().StringVar(&imageTitle, "title", "", "Post title (required)")
	imageCmd.Flags().StringVar(&imageKeyword, "keyword", "", "Search keyword")
	imageCmd.Flags().StringVar(&imageDate, "date", "", "Post date, YYYY-MM-DD (default today)")
	imageCmd.Flags().StringVar(&imageSlug, "slug", "", "Post slug (default derived from the title)")
	imageCmd.Flags().BoolVar(&imageJSON, "json", false, "Print the result as JSON")
	_ = imageCmd.MarkFlagRequired("title")
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	req := imagery.Request{
		Title:   imageTitle,
		Keyword: imageKeyword,
		Date:    imageDate,
		Slug:    imageSlug,
	}
	if req.Date == "" {
		req.Date = now().Format(imagery.DateLayout)
	}
	if req.Slug == "" {
		req.Slug = post.SlugFor(req.Title, req.Keyword)
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	svc, err := newImageService(cmd.Context(), cfg, store, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	res, err := svc.ImageForPost(cmd.Context(), req)
	if err != nil {
		return err
	}

	if imageJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	reportImage(out, res)
	if res.CreditPath != "" {
		fmt.Fprintf(out, "  Credit: %s\n", res.CreditPath)
	}
	return nil
}
