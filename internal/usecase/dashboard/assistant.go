package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/analyst"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
)

// ======================================================
// DATA ANALYST
// ======================================================

type AskAnalyst struct {
	data    *Data
	analyst *analyst.Analyst
	audit   Auditor
}

func NewAskAnalyst(
	data *Data,
	a *analyst.Analyst,
	audit Auditor,
) *AskAnalyst {
	return &AskAnalyst{data: data, analyst: a, audit: audit}
}

func (uc *AskAnalyst) Execute(
	ctx context.Context,
	actor string,
	question string,
	f view.Filter,
) (analyst.Outcome, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return analyst.Outcome{}, err
	}

	outcome, err := uc.analyst.Ask(ctx, snap.Filter(f), question)
	if errors.Is(err, analyst.ErrEmptyQuestion) {
		return analyst.Outcome{}, httperr.ErrBusiness(httperr.CodeInvalidQuestion)
	}
	if err != nil {
		return analyst.Outcome{}, err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   audit.ActionAssistantUsed,
		Entity:   "analyst",
		Metadata: map[string]any{"answered": outcome.Answer != nil},
	})
	return outcome, nil
}

// ======================================================
// MARKETING ASSISTANT
// ======================================================

type DraftCampaign struct {
	data     *Data
	narrator *narrative.Narrator
}

func NewDraftCampaign(data *Data, narrator *narrative.Narrator) *DraftCampaign {
	return &DraftCampaign{data: data, narrator: narrator}
}

func (uc *DraftCampaign) Execute(
	ctx context.Context,
	brief string,
	f view.Filter,
) (narrative.Result, error) {

	brief = strings.TrimSpace(brief)
	if brief == "" {
		return narrative.Result{}, httperr.ErrBusiness(httperr.CodeInvalidQuestion)
	}

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return narrative.Result{}, err
	}
	rows := snap.Filter(f)

	digest := narrative.BuildDigest(rows, f.Describe(snap.Rows))
	return uc.narrator.Campaign(ctx, digest, brief), nil
}

// ======================================================
// IMAGE GENERATION
// ======================================================

type GenerateImage struct {
	narrator *narrative.Narrator
}

func NewGenerateImage(narrator *narrative.Narrator) *GenerateImage {
	return &GenerateImage{narrator: narrator}
}

func (uc *GenerateImage) Execute(
	ctx context.Context,
	description string,
) (narrative.Result, error) {

	description = strings.TrimSpace(description)
	if description == "" {
		return narrative.Result{}, httperr.ErrBusiness(httperr.CodeInvalidQuestion)
	}
	return uc.narrator.Image(ctx, description), nil
}
