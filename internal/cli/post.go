package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/post"
)

var postCmd = &cobra.Command{
	Use:   "post [keyword]",
	Short: "Create a blog post with a featured image",
	Long: `Asks for the post details, picks a featured image and writes the post
into the site's _posts directory.

Flags pre-fill the answers; --yes accepts them without prompting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPost,
}

var (
	postTitle       string
	postDescription string
	postCategory    string
	postTags        string
	postDate        string
	postYes         bool
	postNoImage     bool
	postForce       bool
)

func init() {
	postCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postCmd.Flags().StringVar(&postDescription, "description", "", "Meta description")
	postCmd.Flags().StringVar(&postCategory, "category", "", "Category (default from config)")
	postCmd.Flags().StringVar(&postTags, "tags", "", "Comma separated tags")
	postCmd.Flags().StringVar(&postDate, "date", "", "Publication date, YYYY-MM-DD (default today)")
	postCmd.Flags().BoolVarP(&postYes, "yes", "y", false, "Accept defaults without prompting")
	postCmd.Flags().BoolVar(&postNoImage, "no-image", false, "Skip the featured image")
	postCmd.Flags().BoolVar(&postForce, "force", false, "Overwrite an existing post")
}

func runPost(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	answers := post.Answers{
		Title:       postTitle,
		Description: postDescription,
		Category:    postCategory,
		Tags:        post.SplitList(postTags),
		Author:      cfg.Site.Author,
		Layout:      cfg.Site.Layout,
		Date:        postDate,
	}
	if len(args) > 0 {
		answers.Keyword = args[0]
	}
	if answers.Category == "" {
		answers.Category = cfg.Site.DefaultCategory
	}

	p := newPrompter(cmd)
	if !postYes {
		if answers, err = askAnswers(p, answers); err != nil {
			return err
		}
	} else if answers.Title == "" && answers.Keyword != "" {
		answers.Title = suggestTitle(answers.Keyword)
	}

	draft, err := post.Plan(answers, now())
	if err != nil {
		return err
	}

	target := filepath.Join(cfg.Site.PostsDir, draft.Filename())
	if !postForce {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", post.ErrExists, target)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Title:    %s\n", draft.Title)
	fmt.Fprintf(out, "  Keyword:  %s\n", draft.Keyword)
	fmt.Fprintf(out, "  Category: %s\n", strings.Join(draft.Categories, ", "))
	fmt.Fprintf(out, "  Tags:     %s\n", strings.Join(draft.Tags, ", "))
	fmt.Fprintf(out, "  File:     %s\n", target)
	fmt.Fprintln(out)

	if !postYes {
		ok, err := p.confirm("Create this post?", true)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if !postNoImage {
		store, err := openLedger(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)

		svc, err := newImageService(cmd.Context(), cfg, store, out)
		if err != nil {
			return err
		}

		res, err := svc.ImageForPost(cmd.Context(), draft.ImageRequest())
		if err != nil {
			return err
		}
		draft = draft.WithImage(res)
		reportImage(out, res)
	}

	path, err := post.Write(cfg.Site.PostsDir, draft, postForce)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Post written: %s\n", path)
	return nil
}

func askAnswers(p *prompter, a post.Answers) (post.Answers, error) {
	var err error

	if a.Keyword == "" {
		if a.Keyword, err = p.ask("Main keyword", ""); err != nil {
			return a, err
		}
	}

	titleDefault := a.Title
	if titleDefault == "" && a.Keyword != "" {
		titleDefault = suggestTitle(a.Keyword)
	}
	if a.Title, err = p.ask("Title", titleDefault); err != nil {
		return a, err
	}
	if a.Description, err = p.ask("Description", a.Description); err != nil {
		return a, err
	}
	if a.Category, err = p.ask("Category", a.Category); err != nil {
		return a, err
	}

	tagDefault := strings.Join(a.Tags, ", ")
	if tagDefault == "" {
		tagDefault = a.Keyword
	}
	tags, err := p.ask("Tags (comma separated)", tagDefault)
	if err != nil {
		return a, err
	}
	a.Tags = post.SplitList(tags)

	return a, nil
}

func suggestTitle(keyword string) string {
	return fmt.Sprintf("%sで成果を出すための実践ガイド", keyword)
}
