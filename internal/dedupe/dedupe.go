package dedupe

import (
	"context"
	"strings"

	"github.com/Farengier/usernotes-bot/internal/platform"
	log "github.com/sirupsen/logrus"
)

type AnnotationLister interface {
	Annotations(ctx context.Context, community, user string) ([]platform.Annotation, error)
}

// Guard tells whether a piece of content was already noted, which means
// a previous command for it went through.
type Guard struct {
	lister AnnotationLister
}

func New(lister AnnotationLister) *Guard {
	return &Guard{lister: lister}
}

// AlreadyHandled looks for a note on user whose URL mentions contentID.
// A lookup failure counts as "no notes".
func (g *Guard) AlreadyHandled(ctx context.Context, community, user, contentID string) bool {
	if contentID == "" {
		return false
	}
	notes, err := g.lister.Annotations(ctx, community, user)
	if err != nil {
		log.Warnf("[Dedupe %s] listing notes of %s failed, assuming none: %s", community, user, err)
		return false
	}
	for _, n := range notes {
		if n.URL == "" {
			continue
		}
		if strings.Contains(n.URL, contentID) {
			log.Infof("[Dedupe %s] %s already noted for %s", community, contentID, user)
			return true
		}
	}
	return false
}
