package publish

import "encoding/json"

// PostRequest is the body accepted by POST /post.
type PostRequest struct {
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	Tags          tagList       `json:"tags"`
	Community     string        `json:"community"`
	SelfVote      bool          `json:"self_vote"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
}

// tagList decodes leniently: a tags value that is not a list of strings
// degrades to no tags (and from there to the default tag) instead of
// failing the whole body.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		*t = nil
		return nil
	}
	*t = list
	return nil
}

// Beneficiary is the request wire shape for reward sharing. Weight is in
// basis points of the total reward; it is passed through to the chain,
// which rejects out-of-range values.
type Beneficiary struct {
	Account string `json:"account"`
	Weight  int    `json:"weight"`
}

// postResponse is the success shape for POST /post.
type postResponse struct {
	Success  bool     `json:"success"`
	Author   string   `json:"author"`
	Permlink string   `json:"permlink"`
	URL      string   `json:"url"`
	Tags     []string `json:"tags"`
}
