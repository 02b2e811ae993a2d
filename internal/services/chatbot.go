package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/dataset"
	"github.com/scoutx/analytics-service/internal/valuation"
)

const (
	maxRetrievedPlayers = 5
	maxGeneralResults   = 10
	historyWindow       = 3

	fuzzyMatchThreshold = 0.5
)

// ChatExchange is one user/assistant turn kept in session history.
type ChatExchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatService answers natural-language questions with a retrieval step
// over the predictions snapshot followed by a Gemini call. Retrieval
// tries exact name, then substring, then fuzzy ratio, then keyword
// heuristics for undervalued/position/team questions.
type ChatService struct {
	store      *valuation.Store
	gemini     *GeminiClient
	cache      *CacheService
	logger     *logrus.Logger
	historyTTL time.Duration
}

// NewChatService creates the conversational assistant.
func NewChatService(store *valuation.Store, gemini *GeminiClient, cache *CacheService, ttl time.Duration, logger *logrus.Logger) *ChatService {
	return &ChatService{
		store:      store,
		gemini:     gemini,
		cache:      cache,
		logger:     logger,
		historyTTL: ttl,
	}
}

const greetingReply = `Welcome to the football analytics assistant.

You can ask about:
- A single player: "Tell me about Mason Greenwood"
- Comparisons: "Compare Rashford and Greenwood"
- Value opportunities: "Show me undervalued forwards"
- Teams and positions: "Best players from Manchester United"

Ask away.`

const helpReply = `Here is what the assistant knows:

- Detailed per-player statistics (goals, assists, matches and more)
- Market value analysis: current value, model-predicted value and
  undervaluation score

How to ask:
- Single player: "Tell me about <player name>"
- Comparison: "Compare <player 1> and <player 2>"
- Position search: "Best strikers" or "Top defenders"
- Team search: "Players from Real Madrid"
- Value search: "Undervalued midfielders"`

var greetingWords = []string{"hi", "hai", "hello", "hey", "good morning", "good afternoon", "good evening", "hola", "greetings"}
var helpPhrases = []string{"help", "what can you do", "how do you work", "what do you do", "commands"}
var positionKeywords = []string{"fw", "mf", "df", "gk", "forward", "midfielder", "defender", "goalkeeper"}

// Respond answers one chat message for a session.
func (s *ChatService) Respond(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "Please enter a message.", nil
	}

	lower := strings.ToLower(message)

	// Short-circuit greetings and help questions before retrieval.
	if len(lower) < 20 {
		for _, g := range greetingWords {
			if strings.Contains(lower, g) {
				return greetingReply, nil
			}
		}
	}
	for _, h := range helpPhrases {
		if strings.Contains(lower, h) {
			return helpReply, nil
		}
	}

	ds, err := s.store.Dataset()
	if err != nil {
		return "", err
	}

	results := s.searchPlayer(ds, message)
	if len(results) == 0 {
		results = s.searchGeneral(ds, lower)
	}
	if len(results) == 0 {
		return "I couldn't find any relevant information. Try asking about specific players, teams, or use keywords like 'undervalued players'.", nil
	}

	history := s.loadHistory(ctx, sessionID)
	prompt := s.buildPrompt(message, results, history)

	reply, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		if err == ErrNoAPIKey {
			// no key: answer with the retrieved context alone
			reply := formatPlayerContext(results)
			s.appendHistory(ctx, sessionID, ChatExchange{User: message, Assistant: reply})
			return reply, nil
		}
		s.logger.WithError(err).Warn("Chat generation failed")
		return "I'm sorry, I couldn't retrieve the information from my database at this time.", nil
	}

	s.appendHistory(ctx, sessionID, ChatExchange{User: message, Assistant: reply})
	return reply, nil
}

// Reset clears a session's conversation history.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, s.historyKey(sessionID))
}

func (s *ChatService) historyKey(sessionID string) string {
	return s.cache.BuildKey("chat", "history", sessionID)
}

func (s *ChatService) loadHistory(ctx context.Context, sessionID string) []ChatExchange {
	var history []ChatExchange
	if err := s.cache.Get(ctx, s.historyKey(sessionID), &history); err != nil && err != redis.Nil {
		s.logger.WithError(err).Debug("Failed to load chat history")
	}
	return history
}

func (s *ChatService) appendHistory(ctx context.Context, sessionID string, ex ChatExchange) {
	history := append(s.loadHistory(ctx, sessionID), ex)
	if len(history) > 20 {
		history = history[len(history)-20:]
	}
	if err := s.cache.Set(ctx, s.historyKey(sessionID), history, s.historyTTL); err != nil {
		s.logger.WithError(err).Debug("Failed to store chat history")
	}
}

// searchPlayer retrieves rows by player name: exact match first, then
// substring, then a fuzzy ratio over the whole table.
func (s *ChatService) searchPlayer(ds *dataset.Dataset, query string) []*dataset.Row {
	needle := dataset.NormalizeName(query)

	for i := range ds.Rows {
		if ds.Rows[i].NormalizedName == needle {
			return []*dataset.Row{&ds.Rows[i]}
		}
	}

	var subs []*dataset.Row
	for i := range ds.Rows {
		if strings.Contains(ds.Rows[i].NormalizedName, needle) {
			subs = append(subs, &ds.Rows[i])
			if len(subs) == maxRetrievedPlayers {
				break
			}
		}
	}
	if len(subs) > 0 {
		return subs
	}

	type scored struct {
		row   *dataset.Row
		score float64
	}
	var fuzzy []scored
	for i := range ds.Rows {
		if score := matchRatio(ds.Rows[i].NormalizedName, needle); score > fuzzyMatchThreshold {
			fuzzy = append(fuzzy, scored{row: &ds.Rows[i], score: score})
		}
	}
	sort.SliceStable(fuzzy, func(a, b int) bool { return fuzzy[a].score > fuzzy[b].score })
	if len(fuzzy) > maxRetrievedPlayers {
		fuzzy = fuzzy[:maxRetrievedPlayers]
	}
	out := make([]*dataset.Row, len(fuzzy))
	for i, f := range fuzzy {
		out[i] = f.row
	}
	return out
}

// searchGeneral handles non-name questions: undervaluation ranking,
// then position keywords, then team keywords.
func (s *ChatService) searchGeneral(ds *dataset.Dataset, lowerQuery string) []*dataset.Row {
	keywords := strings.Fields(lowerQuery)

	if strings.Contains(lowerQuery, "undervalue") && ds.HasColumn("Undervaluation") {
		var rows []*dataset.Row
		for i := range ds.Rows {
			if _, ok := ds.Rows[i].Stat("Undervaluation"); ok {
				rows = append(rows, &ds.Rows[i])
			}
		}
		sort.SliceStable(rows, func(a, b int) bool {
			av, _ := rows[a].Stat("Undervaluation")
			bv, _ := rows[b].Stat("Undervaluation")
			return av > bv
		})
		if len(rows) > maxGeneralResults {
			rows = rows[:maxGeneralResults]
		}
		return rows
	}

	for _, kw := range keywords {
		for _, pos := range positionKeywords {
			if kw != pos {
				continue
			}
			var rows []*dataset.Row
			for i := range ds.Rows {
				if strings.Contains(strings.ToLower(ds.Rows[i].Position), kw) {
					rows = append(rows, &ds.Rows[i])
					if len(rows) == maxGeneralResults {
						return rows
					}
				}
			}
			if len(rows) > 0 {
				return rows
			}
		}
	}

	for _, kw := range keywords {
		var rows []*dataset.Row
		for i := range ds.Rows {
			if strings.Contains(strings.ToLower(ds.Rows[i].Squad), kw) {
				rows = append(rows, &ds.Rows[i])
				if len(rows) == maxGeneralResults {
					return rows
				}
			}
		}
		if len(rows) > 0 {
			return rows
		}
	}

	return nil
}

// formatPlayerContext renders retrieved rows into the compact per-line
// context the prompt carries.
func formatPlayerContext(rows []*dataset.Row) string {
	var blocks []string
	for _, r := range rows {
		parts := []string{fmt.Sprintf("Player: %s", r.Name)}
		if r.Squad != "" {
			parts = append(parts, fmt.Sprintf("Team: %s", r.Squad))
		}
		if r.Comp != "" {
			parts = append(parts, fmt.Sprintf("League: %s", r.Comp))
		}
		if age, ok := r.Age(); ok {
			parts = append(parts, fmt.Sprintf("Age: %.0f", age))
		}
		if r.Position != "" {
			parts = append(parts, fmt.Sprintf("Position: %s", r.Position))
		}
		if r.Nation != "" {
			parts = append(parts, fmt.Sprintf("Nationality: %s", r.Nation))
		}
		if born, ok := r.Stat("Born"); ok {
			parts = append(parts, fmt.Sprintf("Birth Year: %.0f", born))
		}
		if v, ok := r.Stat("Market_Value_Million_EUR"); ok {
			parts = append(parts, fmt.Sprintf("Market Value: EUR %.2fM", v))
		}
		if v, ok := r.Stat("Predicted_Value"); ok {
			parts = append(parts, fmt.Sprintf("Predicted Value: EUR %.2fM", v))
		}
		if v, ok := r.Stat("Undervaluation"); ok {
			parts = append(parts, fmt.Sprintf("Undervaluation: EUR %.2fM", v))
		}

		var stats []string
		if v, ok := r.Stat("Performance Gls"); ok {
			stats = append(stats, fmt.Sprintf("Goals: %.0f", v))
		}
		if v, ok := r.Stat("Performance Ast"); ok {
			stats = append(stats, fmt.Sprintf("Assists: %.0f", v))
		}
		if v, ok := r.Stat("Playing Time MP"); ok {
			stats = append(stats, fmt.Sprintf("Matches: %.0f", v))
		}
		if len(stats) > 0 {
			parts = append(parts, fmt.Sprintf("Stats: %s", strings.Join(stats, ", ")))
		}

		blocks = append(blocks, strings.Join(parts, " | "))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *ChatService) buildPrompt(query string, rows []*dataset.Row, history []ChatExchange) string {
	context := formatPlayerContext(rows)

	historyContext := ""
	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}
		var b strings.Builder
		b.WriteString("\nPrevious conversation context:\n")
		for _, h := range recent {
			assistant := h.Assistant
			if len(assistant) > 150 {
				assistant = assistant[:150] + "..."
			}
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", h.User, assistant)
		}
		historyContext = b.String()
	}

	if len(rows) == 1 {
		return fmt.Sprintf(`You are a football analytics expert. Create an informative player report.
%s
PLAYER DATA:
%s

USER QUESTION: %s

Cover: the player profile (name, age, position, team, league,
nationality), performance analysis (key statistics, strengths and
standout attributes), market value analysis (current value, model
prediction, undervaluation status) and a short recommendation. Keep it
professional and grounded strictly in the data above.`, historyContext, context, query)
	}

	return fmt.Sprintf(`You are a football analytics expert making a multi-player comparison.
%s
PLAYERS DATA:
%s

USER QUESTION: %s

Present the players in a ranked format where applicable, highlight key
differences, include market value insights, and finish with actionable
recommendations. Ground everything strictly in the data above.`, historyContext, context, query)
}

// matchRatio is the classic similar-text ratio: twice the length of the
// longest common subsequence over the combined length.
func matchRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[lb]
	return 2 * float64(lcs) / float64(la+lb)
}
