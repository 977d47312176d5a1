package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/internal/testutil"
)

// ---------------------------------------------------------------------------
// Fetch stage
// ---------------------------------------------------------------------------

func TestFetchStage_Website(t *testing.T) {
	f := &staticFetcher{content: "# Harbor Food Bank"}
	in := model.NewAuditState("https://harbor.example.org", model.SourceWebsite)

	out, err := NewFetchStage(f, testutil.TestLogger()).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "# Harbor Food Bank", model.Text(out.RawContent))
	assert.Equal(t, []string{"https://harbor.example.org"}, f.urls)
	assert.Nil(t, in.RawContent, "input state is not modified")
}

func TestFetchStage_EmptyContentIsNotAnError(t *testing.T) {
	out, err := NewFetchStage(&staticFetcher{}, testutil.TestLogger()).
		Run(context.Background(), model.NewAuditState("https://x.example", model.SourceWebsite))
	require.NoError(t, err)
	require.NotNil(t, out.RawContent)
	assert.Empty(t, *out.RawContent)
}

func TestFetchStage_SocialPagePlaceholder(t *testing.T) {
	// An unconfigured fetcher proves no fetch is attempted.
	stage := NewFetchStage(UnconfiguredFetcher{Setting: "FIRECRAWL_API_KEY"}, testutil.TestLogger())
	out, err := stage.Run(context.Background(), model.NewAuditState("https://facebook.com/harbor", model.SourceSocialPage))
	require.NoError(t, err)
	assert.Equal(t, SocialPagePlaceholder, model.Text(out.RawContent))
}

func TestFetchStage_Failure(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := NewFetchStage(&staticFetcher{err: cause}, testutil.TestLogger()).
		Run(context.Background(), model.NewAuditState("https://x.example", model.SourceWebsite))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "https://x.example", fe.URL)
	assert.ErrorIs(t, err, cause)
}

func TestFetchStage_MissingCredential(t *testing.T) {
	stage := NewFetchStage(UnconfiguredFetcher{Setting: "FIRECRAWL_API_KEY"}, testutil.TestLogger())
	_, err := stage.Run(context.Background(), model.NewAuditState("https://x.example", model.SourceWebsite))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "FIRECRAWL_API_KEY", ce.Setting)
}

// ---------------------------------------------------------------------------
// Mission stage
// ---------------------------------------------------------------------------

func TestMissionStage(t *testing.T) {
	gen := newScriptedGenerator("Mission: end hunger in Harbor City")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.RawContent = model.Ptr("We feed families.")

	stage := NewMissionStage(gen, testutil.TestLogger())
	out, err := stage.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Mission: end hunger in Harbor City", model.Text(out.MissionAnalysis),
		"the reply is stored verbatim")
	require.Len(t, gen.calls, 1)
	assert.Equal(t, missionInstruction, gen.calls[0].System)
	assert.Contains(t, gen.calls[0].User, "We feed families.")
	assert.False(t, stage.Degraded(out))
}

func TestMissionStage_NoContent(t *testing.T) {
	for name, raw := range map[string]*string{"absent": nil, "empty": model.Ptr(""), "blank": model.Ptr("  \n")} {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator()
			in := model.NewAuditState("https://x.example", model.SourceWebsite)
			in.RawContent = raw

			stage := NewMissionStage(gen, testutil.TestLogger())
			out, err := stage.Run(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, NoContentMarker, model.Text(out.MissionAnalysis))
			assert.Zero(t, gen.callCount())
			assert.True(t, stage.Degraded(out))
		})
	}
}

func TestMissionStage_GenerationFailure(t *testing.T) {
	gen := newScriptedGenerator()
	gen.failAt, gen.err = 0, errors.New("model not loaded")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.RawContent = model.Ptr("content")

	_, err := NewMissionStage(gen, testutil.TestLogger()).Run(context.Background(), in)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageMission, ae.Stage)
	assert.ErrorIs(t, err, gen.err)
}

// ---------------------------------------------------------------------------
// Stakeholder stage
// ---------------------------------------------------------------------------

func TestStakeholderStage(t *testing.T) {
	gen := newScriptedGenerator("Donors: want transparency\nVolunteers: want recognition")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.MissionAnalysis = model.Ptr("end hunger")

	out, err := NewStakeholderStage(gen, testutil.TestLogger()).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Donors": "want transparency", "Volunteers": "want recognition"},
		out.StakeholderPerspectives)
	assert.Contains(t, gen.calls[0].User, "end hunger")
	assert.Empty(t, in.StakeholderPerspectives, "input state is not modified")
}

func TestStakeholderStage_NoMission(t *testing.T) {
	for name, mission := range map[string]*string{"absent": nil, "marker": model.Ptr(NoContentMarker)} {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator()
			in := model.NewAuditState("https://x.example", model.SourceWebsite)
			in.MissionAnalysis = mission

			stage := NewStakeholderStage(gen, testutil.TestLogger())
			out, err := stage.Run(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{model.ErrorKey: NoMissionMessage}, out.StakeholderPerspectives)
			assert.Zero(t, gen.callCount())
			assert.True(t, stage.Degraded(out))
		})
	}
}

// ---------------------------------------------------------------------------
// Recommendation stage
// ---------------------------------------------------------------------------

func TestRecommendationStage(t *testing.T) {
	gen := newScriptedGenerator("Donors:\nImprove reporting\nAdd newsletter\nVolunteers:\nOffer training")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.MissionAnalysis = model.Ptr("end hunger")
	in.StakeholderPerspectives = map[string]string{"Volunteers": "recognition", "Donors": "transparency"}

	stage := NewRecommendationStage(gen, testutil.TestLogger())
	out, err := stage.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Donors":     {"Improve reporting", "Add newsletter"},
		"Volunteers": {"Offer training"},
	}, out.Recommendations)
	assert.False(t, stage.Degraded(out))

	require.Len(t, gen.calls, 1)
	assert.Equal(t,
		"Mission Analysis: end hunger\n\nStakeholder Perspectives:\nDonors: transparency\nVolunteers: recognition",
		gen.calls[0].User)
}

func TestRecommendationStage_NoPerspectives(t *testing.T) {
	cases := map[string]map[string]string{
		"empty":    {},
		"sentinel": {model.ErrorKey: NoMissionMessage},
	}
	for name, perspectives := range cases {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator()
			in := model.NewAuditState("https://x.example", model.SourceWebsite)
			in.StakeholderPerspectives = perspectives

			stage := NewRecommendationStage(gen, testutil.TestLogger())
			out, err := stage.Run(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, map[string][]string{model.ErrorKey: {NoStakeholdersMessage}}, out.Recommendations)
			assert.Zero(t, gen.callCount())
			assert.True(t, stage.Degraded(out))
		})
	}
}

func TestRecommendationStage_ModelErrorLabelIsNotTheSentinel(t *testing.T) {
	gen := newScriptedGenerator(
		"Error: the organization did not list stakeholders",
		"Error:\nPublish a stakeholder map",
	)
	logger := testutil.TestLogger()
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.MissionAnalysis = model.Ptr("end hunger")

	stakeholders := NewStakeholderStage(gen, logger)
	mid, err := stakeholders.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{model.ErrorKey: "the organization did not list stakeholders"}, mid.StakeholderPerspectives)
	assert.False(t, stakeholders.Degraded(mid))

	recs := NewRecommendationStage(gen, logger)
	out, err := recs.Run(context.Background(), mid)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.callCount(), "a model-written Error label still reaches the generator")
	assert.Equal(t, map[string][]string{model.ErrorKey: {"Publish a stakeholder map"}}, out.Recommendations)
	assert.False(t, recs.Degraded(out))
}

func TestRecommendationStage_GenerationFailure(t *testing.T) {
	gen := newScriptedGenerator()
	gen.failAt, gen.err = 0, context.DeadlineExceeded
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.StakeholderPerspectives = map[string]string{"Donors": "transparency"}

	_, err := NewRecommendationStage(gen, testutil.TestLogger()).Run(context.Background(), in)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageRecommendation, ae.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// Score stage
// ---------------------------------------------------------------------------

func TestScoreStage(t *testing.T) {
	gen := newScriptedGenerator("Comprehensiveness: 8 (thorough)\nActionability: high (no number)")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.MissionAnalysis = model.Ptr("end hunger")
	in.Recommendations = map[string][]string{"Donors": {"Improve reporting", "Add newsletter"}}

	stage := NewScoreStage(gen, testutil.TestLogger())
	out, err := stage.Run(context.Background(), in)
	require.NoError(t, err, "an unparseable line never fails the stage")
	assert.Equal(t, map[string]model.ScoreEntry{
		"Comprehensiveness": {Score: 8, Explanation: "thorough"},
		"Actionability":     {Score: 0, Explanation: UnparseableScore},
	}, out.AuditScore)
	assert.False(t, stage.Degraded(out))
	assert.Equal(t,
		"Mission Analysis: end hunger\n\nRecommendations:\nDonors: Improve reporting\nAdd newsletter",
		gen.calls[0].User)
}

func TestScoreStage_NoRecommendations(t *testing.T) {
	cases := map[string]map[string][]string{
		"empty":    {},
		"sentinel": {model.ErrorKey: {NoStakeholdersMessage}},
	}
	for name, recs := range cases {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator()
			in := model.NewAuditState("https://x.example", model.SourceWebsite)
			in.Recommendations = recs

			stage := NewScoreStage(gen, testutil.TestLogger())
			out, err := stage.Run(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, map[string]model.ScoreEntry{model.ErrorKey: {Score: 0, Explanation: NoRecommendations}},
				out.AuditScore)
			assert.Zero(t, gen.callCount())
			assert.True(t, stage.Degraded(out))
		})
	}
}

func TestScoreStage_ModelErrorLabelIsNotTheSentinel(t *testing.T) {
	gen := newScriptedGenerator("Actionability: 3 (recommendations are thin)")
	in := model.NewAuditState("https://x.example", model.SourceWebsite)
	in.Recommendations = map[string][]string{model.ErrorKey: {"Publish a stakeholder map"}}

	stage := NewScoreStage(gen, testutil.TestLogger())
	out, err := stage.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, map[string]model.ScoreEntry{"Actionability": {Score: 3, Explanation: "recommendations are thin"}}, out.AuditScore)
	assert.False(t, stage.Degraded(out))
}
