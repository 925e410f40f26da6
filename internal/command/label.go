package command

import "strings"

// Note labels understood by the platform.
const (
	LabelBan              = "BAN"
	LabelPermaBan         = "PERMA_BAN"
	LabelSpamWatch        = "SPAM_WATCH"
	LabelSpamWarning      = "SPAM_WARNING"
	LabelAbuseWarning     = "ABUSE_WARNING"
	LabelSolidContributor = "SOLID_CONTRIBUTOR"
	LabelHelpfulUser      = "HELPFUL_USER"
	LabelBotBan           = "BOT_BAN"
)

var labelAliases = map[string][]string{
	LabelBan:              {"b", "ban"},
	LabelSpamWatch:        {"spam", "sw", "spamwatch"},
	LabelAbuseWarning:     {"abusewarn", "abuse warn", "aw"},
	LabelPermaBan:         {"permban", "perm ban", "perm"},
	LabelSpamWarning:      {"spamwarn", "spam warn", "warning", "warn"},
	LabelSolidContributor: {"gooduser", "good", "gu"},
	LabelHelpfulUser:      {"helpful", "helpfuluser"},
	LabelBotBan:           {"botban", "bot ban"},
}

var labelByAlias = func() map[string]string {
	m := map[string]string{}
	for label, aliases := range labelAliases {
		m[strings.ToLower(label)] = label
		for _, a := range aliases {
			m[a] = label
		}
	}
	return m
}()

// ParseLabel maps a moderator-typed note type to a platform label.
// Unknown and "empty" types give "".
func ParseLabel(s string) string {
	return labelByAlias[strings.ToLower(strings.TrimSpace(s))]
}

// LabelFor picks the note label matching a restriction.
func LabelFor(r Restriction) string {
	switch r.Kind {
	case RestrictionPermanent:
		return LabelPermaBan
	case RestrictionTimed, RestrictionIncremental:
		return LabelBan
	default:
		return ""
	}
}
