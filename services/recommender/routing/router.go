// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/compose"
	"github.com/sglab/samantha/services/recommender/config"
	"github.com/sglab/samantha/services/recommender/meta"
	"github.com/sglab/samantha/services/recommender/profile"
	"github.com/sglab/samantha/services/recommender/retrieval"
	"github.com/sglab/samantha/services/recommender/scoring"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var routedTurns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "samantha",
	Subsystem: "routing",
	Name:      "turns_total",
	Help:      "Conversational turns by dialogue branch",
}, []string{"branch"})

var routingTracer = otel.Tracer("samantha.recommender.routing")

// =============================================================================
// User-Facing Messages
// =============================================================================

const (
	msgFarewell      = "👋 대화를 종료합니다. 좋은 하루 되세요! 💕"
	msgNoPrior       = "⚠️ 이전에 추천된 영화가 없습니다. 먼저 추천을 받아주세요."
	msgTitleNotFound = "⚠️ 추천된 영화 중 해당 제목이 없습니다. 다시 확인해주세요."
	msgSelected      = "✅ 선택 완료! 좋은 감상 되세요."
	msgNothingFound  = "죄송해요, 추천할 콘텐츠를 찾지 못했어요."
	msgNoSimilar     = "죄송해요, 유사한 콘텐츠를 찾지 못했어요."
	msgAnswerFailed  = "죄송해요, 지금은 답변을 드리기 어려워요. 잠시 후 다시 시도해 주세요."
)

// followUpPassages bounds how many retrieved passages ground an answer.
const followUpPassages = 3

// Greeting is the opening line of a fresh conversation.
func Greeting(userName string) string {
	return "안녕하세요 " + userName + "님! 🎬 저는 사만다예요. 오늘 기분이나 보고 싶은 영화 분위기를 편하게 말씀해 주세요."
}

// =============================================================================
// Turn Router
// =============================================================================

// Turn is the outcome of routing one user utterance.
type Turn struct {
	// Reply is the user-facing response text, always non-empty.
	Reply string

	// Branch names the dialogue branch that handled the turn.
	Branch Branch

	// Titles are the recommended titles when the turn produced a new
	// recommendation batch, in presentation order.
	Titles []string

	// SelectedTitle is set when a completion turn picked a movie.
	SelectedTitle string

	// Terminated reports that the session ended on this turn.
	Terminated bool
}

// Router classifies each utterance into exactly one dialogue branch and
// runs that branch's handler. Branches are tried in a fixed priority
// order: exit, completion, follow-up, similar, retry, recommend, and
// finally general question answering. The first matching predicate wins;
// later predicates are not consulted.
//
// Thread Safety: the Router itself is immutable after construction and
// safe for concurrent use; each call mutates only the SessionState it is
// given.
type Router struct {
	catalog   *catalog.Catalog
	globalIdx *retrieval.Index
	extractor meta.Extractor
	composer  compose.Composer
	store     profile.Store
	rules     *config.IntentConfig
	logger    *slog.Logger
}

// NewRouter wires a Router. The global question-answering index over the
// full catalog is built here, once. A nil logger selects slog.Default().
func NewRouter(cat *catalog.Catalog, extractor meta.Extractor, composer compose.Composer, store profile.Store, rules *config.IntentConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	items := cat.Items()
	docs := make([]retrieval.Document, 0, len(items))
	for _, it := range items {
		docs = append(docs, retrieval.Document{Title: it.Title, Text: it.Document()})
	}
	return &Router{
		catalog:   cat,
		globalIdx: retrieval.Build(docs),
		extractor: extractor,
		composer:  composer,
		store:     store,
		rules:     rules,
		logger:    logger,
	}
}

// Route handles one user utterance against the session state. It always
// returns a Turn with a usable reply: collaborator failures degrade the
// reply, they never surface as errors to the conversation.
func (r *Router) Route(ctx context.Context, st *SessionState, query string) *Turn {
	ctx, span := routingTracer.Start(ctx, "routing.Route")
	defer span.End()

	query = strings.TrimSpace(query)

	interactionID, err := r.store.RecordInteraction(ctx, st.UserID, query)
	if err != nil {
		r.logger.Warn("recording interaction failed", slog.String("user_id", st.UserID), slog.Any("error", err))
	}

	turn := r.dispatch(ctx, st, interactionID, query)

	routedTurns.WithLabelValues(string(turn.Branch)).Inc()
	span.SetAttributes(
		attribute.String("branch", string(turn.Branch)),
		attribute.Int("titles", len(turn.Titles)),
	)
	return turn
}

func (r *Router) dispatch(ctx context.Context, st *SessionState, interactionID, query string) *Turn {
	if r.isExit(query) {
		st.Reset()
		return &Turn{Reply: msgFarewell, Branch: BranchExit, Terminated: true}
	}

	if strings.Contains(query, r.rules.CompletionToken) {
		return r.handleCompletion(ctx, st, interactionID, query)
	}

	// The result-set branches are only reachable once a recommendation
	// batch exists to refer back to.
	if !st.FirstTurn && len(st.LastRecommendation) > 0 {
		if r.isFollowUp(query, st) {
			return r.handleFollowUp(ctx, st, query)
		}
		if title, ok := r.rules.SimilarTitle(query); ok {
			return r.handleSimilar(ctx, st, interactionID, query, title)
		}
		if r.isRetry(query) && st.LastQuery != "" {
			return r.handleRetry(ctx, st, interactionID, query)
		}
	}

	if containsAny(query, r.rules.RecommendContains) {
		return r.handleRecommend(ctx, st, interactionID, query)
	}

	return r.handleQuestion(ctx, query)
}

// =============================================================================
// Branch Predicates
// =============================================================================

func (r *Router) isExit(query string) bool {
	folded := strings.ToLower(query)
	for _, phrase := range r.rules.ExitPhrases {
		if folded == strings.ToLower(phrase) {
			return true
		}
	}
	return containsAny(query, r.rules.FarewellContains)
}

// isFollowUp matches referential fragments, or a verbatim mention of any
// title from the last recommendation batch.
func (r *Router) isFollowUp(query string, st *SessionState) bool {
	if containsAny(query, r.rules.FollowUpContains) {
		return true
	}
	for _, it := range st.LastRecommendation {
		if strings.Contains(query, it.Title) {
			return true
		}
	}
	return false
}

func (r *Router) isRetry(query string) bool {
	return containsAny(query, r.rules.RetryExcludeContains) ||
		containsAny(query, r.rules.RetryMergeContains)
}

func containsAny(query string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(query, f) {
			return true
		}
	}
	return false
}

// =============================================================================
// Branch Handlers
// =============================================================================

// handleCompletion resolves which recommended movie the user picked. The
// completion token is stripped and the folded remainder is looked up as a
// substring of each folded title, so a partial title like "라라 완료"
// still finds "라라랜드". The first match in presentation order wins.
func (r *Router) handleCompletion(ctx context.Context, st *SessionState, interactionID, query string) *Turn {
	if len(st.LastRecommendation) == 0 {
		return &Turn{Reply: msgNoPrior, Branch: BranchComplete}
	}

	remainder := catalog.FoldTitle(strings.ReplaceAll(query, r.rules.CompletionToken, ""))
	if remainder == "" {
		return &Turn{Reply: msgTitleNotFound, Branch: BranchComplete}
	}
	for _, it := range st.LastRecommendation {
		if !strings.Contains(catalog.FoldTitle(it.Title), remainder) {
			continue
		}
		if err := r.store.RecordFeedback(ctx, interactionID, it.Title, true, false); err != nil {
			r.logger.Warn("recording selection failed", slog.String("title", it.Title), slog.Any("error", err))
		}
		st.SelectedTitle = it.Title
		return &Turn{Reply: msgSelected, Branch: BranchComplete, SelectedTitle: it.Title}
	}
	return &Turn{Reply: msgTitleNotFound, Branch: BranchComplete}
}

// handleFollowUp answers a question about the previous batch, grounded on
// an ephemeral index over just those items.
func (r *Router) handleFollowUp(ctx context.Context, st *SessionState, query string) *Turn {
	docs := make([]retrieval.Document, 0, len(st.LastRecommendation))
	for _, it := range st.LastRecommendation {
		docs = append(docs, retrieval.Document{
			Title: it.Title,
			Text:  retrieval.Truncate(it.Document(), retrieval.DefaultTruncateLimit),
		})
	}
	hits := retrieval.Build(docs).TopK(query, followUpPassages)

	reply, err := r.composer.Answer(ctx, query, hits)
	if err != nil {
		r.logger.Warn("follow-up answer failed", slog.Any("error", err))
		return &Turn{Reply: msgAnswerFailed, Branch: BranchFollowUp}
	}
	return &Turn{Reply: reply, Branch: BranchFollowUp}
}

// handleSimilar recommends by reusing the reference movie's own keywords
// as the meta. The reference itself is always excluded.
func (r *Router) handleSimilar(ctx context.Context, st *SessionState, interactionID, query, title string) *Turn {
	ref, ok := r.catalog.ByTitle(strings.TrimSpace(title))
	if !ok {
		return &Turn{Reply: msgNoSimilar, Branch: BranchSimilar}
	}

	excl := r.exclusions(ctx, st.UserID)
	excl.Extra = append(excl.Extra, ref.Title)
	candidates := scoring.Filter(r.catalog.Items(), excl)

	recs := scoring.Rank(ctx, candidates, meta.FromItem(ref), scoring.DefaultCap)
	if len(recs) == 0 {
		return &Turn{Reply: msgNoSimilar, Branch: BranchSimilar}
	}

	reply := r.composeOrListing(ctx, st, query, recs, false)
	r.applyRecommendation(ctx, st, interactionID, query, recs)
	return &Turn{Reply: reply, Branch: BranchSimilar, Titles: st.LastTitles()}
}

// handleRetry re-runs the previous request with the prior batch excluded.
// Keywords and the composed reply both come from the query that produced
// the batch being replaced, not from the retry utterance, which carries no
// content of its own.
func (r *Router) handleRetry(ctx context.Context, st *SessionState, interactionID, query string) *Turn {
	m := r.extractor.Extract(ctx, st.LastQuery)

	excl := r.exclusions(ctx, st.UserID)
	excl.Extra = append(excl.Extra, st.LastTitles()...)
	candidates := scoring.Filter(r.catalog.Items(), excl)

	recs := scoring.Recommend(ctx, candidates, m)
	if len(recs) == 0 {
		return &Turn{Reply: msgNothingFound, Branch: BranchRetry}
	}

	reply := r.composeOrListing(ctx, st, st.LastQuery, recs, true)
	r.applyRecommendation(ctx, st, interactionID, st.LastQuery, recs)
	return &Turn{Reply: reply, Branch: BranchRetry, Titles: st.LastTitles()}
}

// handleRecommend runs a fresh recommendation from the current query.
// Production-info phrasings (actor, director, plot) take the info-filter
// path; everything else goes through keyword extraction and scoring.
func (r *Router) handleRecommend(ctx context.Context, st *SessionState, interactionID, query string) *Turn {
	m := r.extractor.Extract(ctx, query)
	candidates := scoring.Filter(r.catalog.Items(), r.exclusions(ctx, st.UserID))

	var recs []catalog.Item
	if containsAny(query, r.rules.MovieInfoContains) {
		recs = scoring.RecommendByInfo(ctx, query, candidates, m)
	} else {
		recs = scoring.Recommend(ctx, candidates, m)
	}
	if len(recs) == 0 {
		return &Turn{Reply: msgNothingFound, Branch: BranchRecommend}
	}

	reply := r.composeOrListing(ctx, st, query, recs, false)
	r.applyRecommendation(ctx, st, interactionID, query, recs)
	return &Turn{Reply: reply, Branch: BranchRecommend, Titles: st.LastTitles()}
}

// handleQuestion grounds a free-form question on the full-catalog index.
func (r *Router) handleQuestion(ctx context.Context, query string) *Turn {
	hits := r.globalIdx.TopK(query, followUpPassages)
	reply, err := r.composer.Answer(ctx, query, hits)
	if err != nil {
		r.logger.Warn("question answer failed", slog.Any("error", err))
		return &Turn{Reply: msgAnswerFailed, Branch: BranchQA}
	}
	return &Turn{Reply: reply, Branch: BranchQA}
}

// =============================================================================
// Shared Helpers
// =============================================================================

// exclusions loads the user's cross-session exclusion inputs. Store
// failures degrade to an empty exclusion set rather than blocking the
// turn.
func (r *Router) exclusions(ctx context.Context, userID string) scoring.Exclusions {
	var excl scoring.Exclusions
	titles, err := r.store.PreviousTitles(ctx, userID)
	if err != nil {
		r.logger.Warn("loading previous titles failed", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		excl.PreviousTitles = titles
	}
	dislikes, err := r.store.Dislikes(ctx, userID)
	if err != nil {
		r.logger.Warn("loading dislikes failed", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		excl.Dislikes = dislikes
	}
	return excl
}

// composeOrListing asks the composer for the reply and degrades to the
// templated plain listing when it fails. The recommendation itself is
// never lost to a composer outage.
func (r *Router) composeOrListing(ctx context.Context, st *SessionState, query string, recs []catalog.Item, isRetry bool) string {
	reply, err := r.composer.Compose(ctx, compose.Request{
		Query:    query,
		Items:    recs,
		UserName: st.UserName,
		IsRetry:  isRetry,
	})
	if err != nil {
		r.logger.Warn("composing reply failed", slog.Any("error", err))
		return compose.PlainListing(st.UserName, recs)
	}
	return reply
}

// applyRecommendation commits a successful batch: the session's last
// recommendation is replaced wholesale, the producing query is remembered
// for retries, and the titles join the user's persistent history.
func (r *Router) applyRecommendation(ctx context.Context, st *SessionState, interactionID, producingQuery string, recs []catalog.Item) {
	st.LastRecommendation = recs
	st.LastQuery = producingQuery
	st.FirstTurn = false
	st.SelectedTitle = ""

	if err := r.store.LogRecommendations(ctx, interactionID, st.LastTitles()); err != nil {
		r.logger.Warn("logging recommendations failed", slog.Any("error", err))
	}
}
