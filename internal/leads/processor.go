package leads

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"leadrouter/internal/enrich"
	"leadrouter/internal/model"
)

// BranchLookup resolves a branch ID. It must always return a branch,
// falling back to a default one for unknown IDs.
type BranchLookup interface {
	GetBranchByID(id int) model.Branch
}

// ModelLookup resolves a car model ID; unknown IDs report false.
type ModelLookup interface {
	GetModelByID(id string) (model.CarModel, bool)
}

// Enricher fetches external signals for a lead. A nil response means no
// enrichment is available.
type Enricher interface {
	Enrich(ctx context.Context, req *enrich.Request) *enrich.Response
}

// Processor turns a lead request into a scored, routed ProcessedLead.
type Processor struct {
	branches BranchLookup
	models   ModelLookup
	enricher Enricher
	logger   *slog.Logger
}

func NewProcessor(branches BranchLookup, models ModelLookup, enricher Enricher, logger *slog.Logger) *Processor {
	return &Processor{
		branches: branches,
		models:   models,
		enricher: enricher,
		logger:   logger,
	}
}

// Process builds the ProcessedLead for req. Missing enrichment lowers the
// score but never fails the lead; the only error is ctx cancellation,
// checked before any lookup and again after the enrichment call.
func (p *Processor) Process(ctx context.Context, req model.LeadRequest) (model.ProcessedLead, error) {
	if err := ctx.Err(); err != nil {
		return model.ProcessedLead{}, err
	}

	branchID, _ := strconv.Atoi(strings.TrimSpace(req.BranchID))
	branch := p.branches.GetBranchByID(branchID)

	var car *model.CarModel
	if cm, ok := p.models.GetModelByID(req.AskedCar); ok {
		car = &cm
	}

	resp := p.enricher.Enrich(ctx, &enrich.Request{
		Email: req.Email,
		Phone: req.Phone,
		Area:  req.Area,
	})
	if err := ctx.Err(); err != nil {
		return model.ProcessedLead{}, err
	}

	enrichmentScore := EnrichmentScore(resp)
	carScore := 0
	if car != nil {
		carScore = CarScore(*car)
	}
	score := CompositeScore(enrichmentScore, carScore)
	priority, assignee := Route(score, branch, req.WorkerCode)

	if p.logger != nil {
		p.logger.Info("lead_scored",
			"branch_id", branch.BranchID,
			"model_found", car != nil,
			"enriched", resp != nil && resp.Data != nil,
			"enrichment_score", enrichmentScore,
			"car_score", carScore,
			"score", score,
			"priority", string(priority),
		)
	}

	return model.ProcessedLead{
		OriginalLead: req,
		BranchInfo:   branch,
		CarInfo:      car,
		Enrichment:   enrichmentSnapshot(resp),
		Score:        score,
		Priority:     priority,
		AssignedTo:   assignee,
		Status:       model.ProcessedLeadStatus,
	}, nil
}

func enrichmentSnapshot(resp *enrich.Response) *model.LeadEnrichment {
	if resp == nil || resp.Data == nil {
		return nil
	}
	d := resp.Data
	out := &model.LeadEnrichment{LeadPriority: d.LeadPriority}
	if d.Geographic != nil {
		out.City = d.Geographic.City
		out.Region = d.Geographic.Region
	}
	if d.EmailInsights != nil {
		out.TrustLevel = d.EmailInsights.TrustLevel
	}
	if d.PhoneInsights != nil {
		out.Carrier = d.PhoneInsights.Carrier
		out.Verified = d.PhoneInsights.Verified
	}
	return out
}
