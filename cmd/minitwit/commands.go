package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/service"
	"github.com/d60-Lab/minitwit/pkg/pagination"
)

type command int

const (
	cmdSignup command = iota + 1
	cmdFollow
	cmdUnfollow
	cmdBlock
	cmdPost
	cmdDeletePost
	cmdFeed
	cmdUsers
	cmdFollowing
	cmdFollowers
	cmdPosts
)

var commandNames = []struct {
	name  string
	cmd   command
	usage string
}{
	{"signup", cmdSignup, "--id ID --name NAME --email EMAIL --phone DIGITS --password PW"},
	{"follow", cmdFollow, "--as ME TARGET"},
	{"unfollow", cmdUnfollow, "--as ME TARGET"},
	{"block", cmdBlock, "--as ME FOLLOWER"},
	{"post", cmdPost, "--as ME TEXT..."},
	{"delete-post", cmdDeletePost, "--as ME POST_ID"},
	{"feed", cmdFeed, "--as ME [--page N] [--size N] [--all]"},
	{"users", cmdUsers, "[--page N] [--size N]"},
	{"following", cmdFollowing, "--as ME [--page N] [--size N]"},
	{"followers", cmdFollowers, "--as ME [--page N] [--size N]"},
	{"posts", cmdPosts, "AUTHOR [--page N] [--size N]"},
}

func parseCommand(s string) (command, bool) {
	for _, c := range commandNames {
		if c.name == s {
			return c.cmd, true
		}
	}
	return 0, false
}

func (c command) String() string {
	for _, n := range commandNames {
		if n.cmd == c {
			return n.name
		}
	}
	return "unknown"
}

type app struct {
	identity service.IdentityService
	rel      service.RelationshipService
	posts    service.PostService
	feed     service.FeedService
	pageSize int

	out    io.Writer
	errOut io.Writer
}

// errUsage marks argument mistakes; they exit with status 2.
var errUsage = errors.New("usage")

func (a *app) usage() {
	fmt.Fprintln(a.errOut, "usage: minitwit <command> [flags]")
	fmt.Fprintln(a.errOut, "\ncommands:")
	for _, c := range commandNames {
		fmt.Fprintf(a.errOut, "  %-12s %s\n", c.name, c.usage)
	}
}

// run dispatches args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return 2
	}
	cmd, ok := parseCommand(args[0])
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n", args[0])
		a.usage()
		return 2
	}

	fs := pflag.NewFlagSet(cmd.String(), pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	as := fs.String("as", "", "acting user id")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", a.pageSize, "page size")
	all := fs.Bool("all", false, "print every page")
	var in service.SignupInput
	if cmd == cmdSignup {
		fs.StringVar(&in.ID, "id", "", "user id")
		fs.StringVar(&in.DisplayName, "name", "", "display name")
		fs.StringVar(&in.Email, "email", "", "email")
		fs.StringVar(&in.Phone, "phone", "", "phone number (digits)")
		fs.StringVar(&in.Password, "password", "", "password")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	rest := fs.Args()

	var err error
	switch cmd {
	case cmdSignup:
		var u *model.User
		if u, err = a.identity.Signup(ctx, in); err == nil {
			fmt.Fprintf(a.out, "Sign-up successful! Your user ID is %s\n", u.ID)
		}
	case cmdFollow:
		err = a.withTarget(*as, rest, func(target string) error {
			if err := a.rel.Follow(ctx, *as, target); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "You are now following %s\n", target)
			return nil
		})
	case cmdUnfollow:
		err = a.withTarget(*as, rest, func(target string) error {
			if err := a.rel.Unfollow(ctx, *as, target); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "You unfollowed %s\n", target)
			return nil
		})
	case cmdBlock:
		err = a.withTarget(*as, rest, func(target string) error {
			if err := a.rel.Block(ctx, *as, target); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "You blocked %s\n", target)
			return nil
		})
	case cmdPost:
		if *as == "" || len(rest) == 0 {
			err = errUsage
			break
		}
		var p *model.Post
		if p, err = a.posts.Create(ctx, *as, strings.Join(rest, " ")); err == nil {
			fmt.Fprintf(a.out, "Posted! (#%d) Your followers will see this in their feed now.\n", p.ID)
		}
	case cmdDeletePost:
		err = a.withTarget(*as, rest, func(raw string) error {
			id, perr := strconv.ParseUint(raw, 10, 64)
			if perr != nil {
				return errUsage
			}
			if err := a.posts.Delete(ctx, id, *as); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted post #%d\n", id)
			return nil
		})
	case cmdFeed:
		if *as == "" {
			err = errUsage
			break
		}
		if *all {
			err = a.printAllFeed(ctx, *as, *size)
			break
		}
		var p pagination.Page[*model.FeedEntry]
		if p, err = a.feed.Feed(ctx, *as, *page, *size); err == nil {
			if len(p.Items) == 0 && p.Page == 1 {
				fmt.Fprintln(a.out, "No posts in your feed yet.")
			}
			printFeed(a.out, p.Items)
			a.footer(p.Page, p.HasMore)
		}
	case cmdUsers:
		var p pagination.Page[*model.User]
		if p, err = a.identity.List(ctx, *page, *size); err == nil {
			for _, u := range p.Items {
				fmt.Fprintf(a.out, "%-20s %-24s %s\n", u.ID, u.DisplayName, u.Email)
			}
			a.footer(p.Page, p.HasMore)
		}
	case cmdFollowing, cmdFollowers:
		if *as == "" {
			err = errUsage
			break
		}
		list := a.rel.ListFollowing
		if cmd == cmdFollowers {
			list = a.rel.ListFollowers
		}
		var p pagination.Page[model.Connection]
		if p, err = list(ctx, *as, *page, *size); err == nil {
			for _, c := range p.Items {
				fmt.Fprintf(a.out, "%-20s %-24s since %s\n", c.UserID, c.DisplayName, c.Since.Format(time.DateTime))
			}
			a.footer(p.Page, p.HasMore)
		}
	case cmdPosts:
		if len(rest) != 1 {
			err = errUsage
			break
		}
		var p pagination.Page[*model.Post]
		if p, err = a.posts.ListByAuthor(ctx, rest[0], *page, *size); err == nil {
			for _, post := range p.Items {
				fmt.Fprintf(a.out, "#%d  %s\n%s\n%s\n", post.ID, post.CreatedAt.Format(time.DateTime), post.Content, strings.Repeat("-", 40))
			}
			a.footer(p.Page, p.HasMore)
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.errOut, "usage: minitwit %s\n", usageOf(cmd))
		return 2
	default:
		if code := apperr.CodeOf(err); code != "" {
			fmt.Fprintf(a.errOut, "%s: %s\n", code, err)
		} else {
			fmt.Fprintln(a.errOut, err)
		}
		return 1
	}
}

func (a *app) withTarget(as string, rest []string, fn func(string) error) error {
	if as == "" || len(rest) != 1 {
		return errUsage
	}
	return fn(rest[0])
}

func (a *app) printAllFeed(ctx context.Context, viewer string, size int) error {
	if ok, err := a.identity.Exists(ctx, viewer); err != nil {
		return err
	} else if !ok {
		return apperr.ErrUnknownUser
	}
	cur := a.feed.FeedCursor(viewer, size)
	n := 0
	for {
		chunk, ok := cur.Next(ctx)
		if !ok {
			break
		}
		n++
		fmt.Fprintf(a.out, "== page %d ==\n", n)
		printFeed(a.out, chunk)
	}
	if n == 0 && cur.Err() == nil {
		fmt.Fprintln(a.out, "No posts in your feed yet.")
	}
	return cur.Err()
}

func printFeed(w io.Writer, entries []*model.FeedEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s (@%s)  |  %s\n%s\n%s\n",
			e.AuthorDisplayName, e.AuthorID, e.CreatedAt.Format(time.DateTime), e.Content, strings.Repeat("-", 40))
	}
}

func (a *app) footer(page int, more bool) {
	if more {
		fmt.Fprintf(a.out, "(page %d, more with --page %d)\n", page, page+1)
	}
}

func usageOf(cmd command) string {
	for _, c := range commandNames {
		if c.cmd == cmd {
			return c.name + " " + c.usage
		}
	}
	return "<command> [flags]"
}
