package handler

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/model"
)

type GroupsResponse struct {
	GeneID string            `json:"odb_gene_id"`
	Groups []model.GroupInfo `json:"groups"`
}

type ResolveResponse struct {
	UniProtID string `json:"uniprot_id"`
	GeneID    string `json:"odb_gene_id"`
}

// GroupsHandler lists every ortholog group containing gene_id.
func (app *AppContext) GroupsHandler(w http.ResponseWriter, r *http.Request) {
	gene := strings.TrimSpace(r.URL.Query().Get("gene_id"))
	if gene == "" {
		writeError(w, fmt.Errorf("%w: missing gene_id", model.ErrInvalidInput))
		return
	}

	logger.Debug("Listing groups", zap.String("gene_id", gene))
	groups, err := app.Store.ListGroups(r.Context(), gene)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GroupsResponse{GeneID: gene, Groups: groups})
}

// ResolveHandler maps uniprot_id to a database gene id. duplicate_action
// overrides the configured policy for this request.
func (app *AppContext) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	uniprot := strings.TrimSpace(r.URL.Query().Get("uniprot_id"))
	if uniprot == "" {
		writeError(w, fmt.Errorf("%w: missing uniprot_id", model.ErrInvalidInput))
		return
	}
	action := db.DuplicateAction(r.URL.Query().Get("duplicate_action"))
	if action == "" {
		action = db.DuplicateAction(app.Pipeline.Params.DuplicateAction)
	}
	if action != db.DuplicateFirst && action != db.DuplicateLongest {
		writeError(w, fmt.Errorf("%w: duplicate_action %q, must be first or longest", model.ErrInvalidInput, action))
		return
	}

	gene, err := app.Store.ResolveQueryID(r.Context(), uniprot, action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{UniProtID: uniprot, GeneID: gene})
}
