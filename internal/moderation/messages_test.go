package moderation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/platform"
	"github.com/stretchr/testify/assert"
)

func TestRemovalReplyUnknownRule(t *testing.T) {
	msg := removalReply("ufos", []platform.Rule{{Priority: 0, ShortName: "One", Description: "d"}}, []int{1, 9})

	assert.Contains(t, msg, "removed from r/ufos for:")
	assert.Contains(t, msg, "Rule 1: One\n\nd\n\n")
	assert.Contains(t, msg, "Rule 9\n\n")
}

func TestRemovalReplyWithoutRules(t *testing.T) {
	msg := removalReply("ufos", nil, nil)
	assert.Contains(t, msg, "removed from r/ufos.\n\n")
}

func TestFailureMessageByKind(t *testing.T) {
	c := platform.Comment{Permalink: "/r/x/1"}

	exhausted := fmt.Errorf("ban: %w: %w", executor.ErrExhausted, platform.Transient("ban", errors.New("503")))
	assert.Contains(t, failureMessage(c, exhausted), "kept failing")

	denied := platform.NewError(platform.KindAuthorization, "ban", errors.New("403"))
	assert.Contains(t, failureMessage(c, denied), "not allowed")

	plain := failureMessage(c, errors.New("boom"))
	assert.Contains(t, plain, "Error: boom")
	assert.Contains(t, plain, "https://www.reddit.com/r/x/1")
}
