package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/post"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse existing posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE:  runPostsList,
}

var postsLimit int

func init() {
	postsCmd.AddCommand(postsListCmd)
	postsListCmd.Flags().IntVarP(&postsLimit, "limit", "n", 20, "Maximum number of posts (0 for all)")
}

func runPostsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	posts, err := post.List(cfg.Site.PostsDir, postsLimit)
	if err != nil {
		return fmt.Errorf("failed to read posts: %w", err)
	}
	if len(posts) == 0 {
		fmt.Fprintf(out, "No posts in %s\n", cfg.Site.PostsDir)
		return nil
	}

	for _, p := range posts {
		marker := " "
		if p.FrontMatter.Image == "" {
			marker = "!"
		} else if p.FrontMatter.ImageGenerated {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s\n", marker, p.Filename, p.FrontMatter.Title)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "* generated image  ! no image")
	return nil
}
