package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
)

const maxVoteBodyBytes = 1 << 10

type VoteHandler struct {
	service ports.VoteService
	logger  logrus.FieldLogger
}

func NewVoteHandler(service ports.VoteService, logger logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{
		service: service,
		logger:  logger,
	}
}

const voteField = "vote"

// decodeVote returns the option named by the exact "vote" key. Any body that
// does not carry it as a string yields an empty option, which the service
// rejects once it has checked the store.
func decodeVote(w http.ResponseWriter, r *http.Request) string {
	var fields map[string]json.RawMessage
	body := http.MaxBytesReader(w, r.Body, maxVoteBodyBytes)
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return ""
	}

	raw, ok := fields[voteField]
	if !ok {
		return ""
	}

	var option string
	if err := json.Unmarshal(raw, &option); err != nil {
		return ""
	}
	return option
}

func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.Vote(r.Context(), ports.VoteInput{Option: decodeVote(w, r)})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		tally.Option.String(): tally.Total,
	})
}

func (h *VoteHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
