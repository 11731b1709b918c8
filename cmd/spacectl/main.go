// spacectl is the operator's command-line admin console: mark spaces taken
// (with a preview/confirm step when replacing the main image), publish
// updates, and revert mistakes, all against a running naikenten server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"naikenten/internal/client"
	"naikenten/internal/space"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: spacectl <command> [flags]

commands:
  mark <id>      mark one space taken (preview/confirm when --image is set)
  mark-multi     mark several spaces taken in one shot
  publish <id>   publish an update with images
  revert <id>    undo the most recent update of a space

environment:
  NAIKENTEN_URL    server base URL (default http://127.0.0.1:8080)
  NAIKENTEN_TOKEN  admin bearer token
`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	c := client.New(envDefault("NAIKENTEN_URL", "http://127.0.0.1:8080"), os.Getenv("NAIKENTEN_TOKEN"))
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "mark":
		err = runMark(ctx, c, os.Args[2:])
	case "mark-multi":
		err = runMarkMulti(ctx, c, os.Args[2:])
	case "publish":
		err = runPublish(ctx, c, os.Args[2:])
	case "revert":
		err = runRevert(ctx, c, os.Args[2:])
	default:
		usage()
	}

	if err != nil {
		kind := "error"
		switch {
		case errors.Is(err, client.ErrValidation):
			kind = "invalid input"
		case isAPIError(err):
			kind = "server error"
		}
		fmt.Fprintln(os.Stderr, errStyle.Render(kind+": ")+err.Error())
		os.Exit(1)
	}
}

func isAPIError(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr)
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func idArg(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, errors.New("space id required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid space id %q", args[0])
	}
	return id, args[1:], nil
}

func readFile(path string) (client.File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return client.File{}, err
	}
	return client.File{Name: filepath.Base(path), Data: b}, nil
}

// stringList is a repeatable --image flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runMark(ctx context.Context, c *client.Client, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("mark", flag.ExitOnError)
	by := fs.String("by", "", "who took the space")
	note := fs.String("note", "", "reason/contact note")
	imagePath := fs.String("image", "", "replacement main image")
	publish := fs.Bool("publish", false, "publish the new main image")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var image *client.File
	if *imagePath != "" {
		f, err := readFile(*imagePath)
		if err != nil {
			return err
		}
		image = &f
	}

	// Two-phase flow when swapping the main image: preview, confirm, commit.
	// Declining the prompt sends nothing.
	if image != nil && !*yes {
		preview, err := c.PreviewMark(ctx, id, *note, image)
		if err != nil {
			return err
		}
		fmt.Println(boxStyle.Render(renderPreview(preview)))
		if !confirm("Replace the main image and mark taken?") {
			fmt.Println(faintStyle.Render("cancelled, nothing sent"))
			return nil
		}
	}

	res, err := c.ConfirmMark(ctx, id, *by, *note, image, *publish)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("space %d marked taken", res.ID)
	if res.Published {
		msg += " and published"
	}
	fmt.Println(okStyle.Render("ok: ") + msg)
	return nil
}

func renderPreview(p *client.MarkPreview) string {
	line := func(label string, im *space.ImageRef) string {
		if im == nil {
			return label + ": (none)"
		}
		return label + ": " + im.Src
	}
	out := line("old", p.Old) + "\n" + line("new", p.New)
	if p.Note != "" {
		out += "\nnote: " + p.Note
	}
	return out
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func runMarkMulti(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("mark-multi", flag.ExitOnError)
	idsFlag := fs.String("ids", "", "comma-separated space ids")
	by := fs.String("by", "", "who took the spaces")
	note := fs.String("note", "", "reason/contact note")
	instructions := fs.String("instructions", "", "participant instruction text")
	var imagePaths stringList
	fs.Var(&imagePaths, "image", "instruction image (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ids []int
	for _, part := range strings.Split(*idsFlag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid space id %q", part)
		}
		ids = append(ids, id)
	}

	var files []client.File
	for _, p := range imagePaths {
		f, err := readFile(p)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	res, err := c.MarkTaken(ctx, ids, *by, *note, *instructions, files)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("marked %d space(s) as taken by %s", len(res.MarkedIDs), *by)
	if res.InstructionImageCount > 0 {
		msg += fmt.Sprintf(" with %d instruction image(s)", res.InstructionImageCount)
	}
	fmt.Println(okStyle.Render("ok: ") + msg)
	for _, e := range res.Errors {
		fmt.Println(errStyle.Render("skipped: ") + e)
	}
	return nil
}

func runPublish(ctx context.Context, c *client.Client, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	author := fs.String("author", "", "update author")
	text := fs.String("text", "", "update text")
	var imagePaths stringList
	fs.Var(&imagePaths, "image", "update image (repeatable, first becomes primary)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var files []client.File
	for _, p := range imagePaths {
		f, err := readFile(p)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	res, err := c.PublishUpdate(ctx, id, *author, *text, files)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("ok: ") + fmt.Sprintf("published %d image(s) for space %d", res.ImageCount, id))
	return nil
}

func runRevert(ctx context.Context, c *client.Client, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("revert", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if !*yes && !confirm(fmt.Sprintf("Revert the most recent update of space %d?", id)) {
		fmt.Println(faintStyle.Render("cancelled, nothing sent"))
		return nil
	}

	res, err := c.RevertLast(ctx, id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("reverted space %d", res.ID)
	if res.RevertedAt != "" {
		msg += " (update from " + res.RevertedAt + ")"
	}
	fmt.Println(okStyle.Render("ok: ") + msg)
	return nil
}
