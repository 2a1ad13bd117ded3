package github

import (
	"fmt"

	"github.com/matzehuels/ghgraph/pkg/integrations"
)

// ContributorAnonymous is the contributor type GitHub reports for commit
// authors that aren't linked to an account (only returned with anon=1).
const ContributorAnonymous = "Anonymous"

// Repo represents a GitHub repository.
type Repo struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Watchers int    `json:"watchers_count"`
}

// Contributor represents one entry of a repository's contributor list.
// Anonymous contributors carry a Name (and no ID or Login).
type Contributor struct {
	ID            int64  `json:"id,omitempty"`
	Login         string `json:"login,omitempty"`
	Name          string `json:"name,omitempty"`
	Type          string `json:"type"`
	Contributions int    `json:"contributions"`
}

// Anonymous reports whether c has no GitHub account attached.
func (c Contributor) Anonymous() bool {
	return c.Type == ContributorAnonymous || c.Login == ""
}

func (r Repo) validate() error {
	switch {
	case r.FullName == "":
		return fmt.Errorf("%w: repository %d without full_name", integrations.ErrMalformed, r.ID)
	case r.ID <= 0:
		return fmt.Errorf("%w: repository %q without id", integrations.ErrMalformed, r.FullName)
	case r.Watchers < 0:
		return fmt.Errorf("%w: repository %q with negative watchers", integrations.ErrMalformed, r.FullName)
	}
	return nil
}

func (c Contributor) validate() error {
	switch {
	case c.Contributions < 0:
		return fmt.Errorf("%w: contributor %q with negative contributions", integrations.ErrMalformed, c.Login)
	case !c.Anonymous() && c.ID <= 0:
		return fmt.Errorf("%w: contributor %q without id", integrations.ErrMalformed, c.Login)
	}
	return nil
}
