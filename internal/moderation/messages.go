package moderation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Farengier/usernotes-bot/internal/command"
	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/platform"
)

const (
	subjectSummary    = "Bot Action Summary"
	subjectFailure    = "Error during removal request processing"
	subjectUnresolved = "Unable to action removal request"
)

func permalinkURL(permalink string) string {
	return "https://www.reddit.com" + permalink
}

func removalReply(community string, rules []platform.Rule, cited []int) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Hi, thanks for contributing. However, your submission was removed from r/%s", community)
	if len(cited) == 0 {
		sb.WriteString(".\n\n")
	} else {
		sb.WriteString(" for:\n\n")
	}
	for _, n := range cited {
		if n < 1 || n > len(rules) {
			fmt.Fprintf(sb, "Rule %d\n\n", n)
			continue
		}
		r := rules[n-1]
		fmt.Fprintf(sb, "Rule %d: %s\n\n%s\n\n", r.Priority+1, r.ShortName, r.Description)
	}
	sb.WriteString("You can message the mods if you feel this was in error, " +
		"please include a link to the comment or post in question.")
	return sb.String()
}

func summaryMessage(target platform.Content, note string, r command.Restriction) string {
	msg := fmt.Sprintf("I have performed the following:\n\n"+
		"URL: %s  \n\n"+
		"Usernote detail: %s\n\n", target.URL(), note)
	if r.IsSet() {
		msg += fmt.Sprintf("Ban: %s\n\n", r.Describe())
	}
	return msg
}

func unresolvedMessage(c platform.Comment) string {
	return fmt.Sprintf("I could not action your request:  \n\n"+
		"URL: %s  \n\n"+
		"The content you replied to, or its author, has been deleted, so there is nobody to note. "+
		"Your command comment has been removed.", permalinkURL(c.Permalink))
}

func failureMessage(c platform.Comment, err error) string {
	reason := fmt.Sprintf("Error: %s", err)
	switch {
	case errors.Is(err, executor.ErrExhausted):
		reason = fmt.Sprintf("Reddit kept failing after several retries: %s", err)
	case platform.KindOf(err) == platform.KindAuthorization:
		reason = fmt.Sprintf("I am not allowed to perform this action: %s", err)
	}
	return fmt.Sprintf("I've encountered an error whilst actioning your removal request:  \n\n"+
		"URL: %s  \n\n"+
		"%s\n\n"+
		"Please review your comment and the offending user to ensure all is as expected. "+
		"If your command is in the correct format, e.g. \".r 1,2,3\", please raise this issue to the developers.",
		permalinkURL(c.Permalink), reason)
}
