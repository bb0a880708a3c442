package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemgate/core/internal/config"
	"github.com/steemgate/core/internal/pkg/response"
	"github.com/steemgate/core/internal/pkg/steem"
)

// PlatformDomain is the front end the post URL in the response points at.
const PlatformDomain = "steemit.com"

const publishTimeout = 30 * time.Second

// Handler serves the post submission endpoint.
type Handler struct {
	cfg         *config.AppConfig
	broadcaster steem.Broadcaster
	logger      *zap.Logger
}

func NewHandler(cfg *config.AppConfig, broadcaster steem.Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, broadcaster: broadcaster, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/post", auth, h.createPost)
}

func (h *Handler) createPost(c *gin.Context) {
	req, ok := bindPostRequest(c)
	if !ok {
		response.BadRequest(c, "JSON body required")
		return
	}
	if err := validateBeneficiaries(req.Beneficiaries); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}
	if body == "" {
		response.BadRequest(c, "body is required")
		return
	}

	tags := NormalizeTags(req.Tags)
	permlink := GeneratePermlink(title)
	author := h.cfg.Author

	metadata, err := json.Marshal(BuildMetadata(tags, body))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	h.logger.Info("publishing post",
		zap.String("title", title),
		zap.String("author", author),
		zap.String("permlink", permlink),
		zap.Strings("tags", tags),
		zap.Int("nodes", len(h.cfg.Nodes)),
	)

	ctx, cancel := context.WithTimeout(c.Request.Context(), publishTimeout)
	defer cancel()

	receipt, err := h.broadcaster.SubmitPost(ctx, &steem.SubmitRequest{
		Author:        author,
		Permlink:      permlink,
		Title:         title,
		Body:          body,
		Tags:          tags,
		JSONMetadata:  string(metadata),
		Community:     strings.TrimSpace(req.Community),
		SelfVote:      req.SelfVote,
		Beneficiaries: toBeneficiaries(req.Beneficiaries),
	})
	if err != nil {
		if errors.Is(err, steem.ErrAccountNotFound) {
			h.logger.Warn("author account not found",
				zap.String("title", title),
				zap.String("author", author),
				zap.Int("nodes", len(h.cfg.Nodes)),
			)
			response.BadRequest(c, fmt.Sprintf("Account @%s does not exist on Steemit", author))
			return
		}
		h.logger.Error("post submission failed",
			zap.String("title", title),
			zap.String("author", author),
			zap.Int("nodes", len(h.cfg.Nodes)),
			zap.Error(err),
		)
		response.InternalError(c, err)
		return
	}

	h.logger.Info("post published",
		zap.String("permlink", permlink),
		zap.String("tx", receipt.ID),
		zap.Uint32("block", receipt.BlockNum),
	)

	response.Created(c, postResponse{
		Success:  true,
		Author:   author,
		Permlink: permlink,
		URL:      fmt.Sprintf("https://%s/@%s/%s", PlatformDomain, author, permlink),
		Tags:     tags,
	})
}

// bindPostRequest decodes the JSON body, rejecting anything that is not a
// non-empty object. The raw form is inspected first so an empty object or a
// null body fails the same way a missing one does.
func bindPostRequest(c *gin.Context) (*PostRequest, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return nil, false
	}

	var req PostRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, false
	}
	return &req, true
}

// validateBeneficiaries bounds each weight to basis points. Converting an
// out-of-range value to the wire's uint16 would silently redirect rewards,
// so invalid weights never reach the chain.
func validateBeneficiaries(in []Beneficiary) error {
	for _, b := range in {
		if b.Weight < 0 || b.Weight > 10000 {
			return fmt.Errorf("beneficiary weight %d out of range, expected 0-10000", b.Weight)
		}
	}
	return nil
}

func toBeneficiaries(in []Beneficiary) []steem.Beneficiary {
	if len(in) == 0 {
		return nil
	}
	out := make([]steem.Beneficiary, 0, len(in))
	for _, b := range in {
		out = append(out, steem.Beneficiary{
			Account: strings.TrimSpace(b.Account),
			Weight:  uint16(b.Weight),
		})
	}
	return out
}
