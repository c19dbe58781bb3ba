// Package game implements the impostor game's room state machine. A Game is
// not safe for concurrent use; the rooms package serialises access to it.
package game

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"impostor/internal/players"
	"impostor/internal/roles"
	"impostor/internal/votes"
	"impostor/internal/wordbank"
)

type Winner string

const (
	WinnerNone     = Winner("")
	WinnerPlayers  = Winner("PLAYERS")
	WinnerImpostor = Winner("IMPOSTOR")
)

// WordMode decides where the category and secret word come from.
type WordMode string

const (
	WordModeInteractive = WordMode("INTERACTIVE")
	WordModePool        = WordMode("POOL")
)

const (
	maxUsernameLen = 24
	maxValueLen    = 48
	maxPoolSize    = 50
)

type WordEntry struct {
	ID      string
	Word    string
	Hint    string
	AddedBy string
}

// TallyResult records how the last closed round was resolved.
type TallyResult struct {
	Round          int
	Counts         map[string]int
	EliminatedID   string
	EliminatedRole players.Role
	Tie            bool
}

type Options struct {
	MinPlayers int
	MaxPlayers int
	Picker     roles.Picker
	Bank       *wordbank.Bank
	NewID      func() string
}

func DefaultOptions() Options {
	return Options{
		MinPlayers: 3,
		MaxPlayers: 10,
	}
}

type Game struct {
	code       string
	phase      Phase
	hostID     string
	roster     *players.Roster
	wordMode   WordMode
	pool       []WordEntry
	usedEntry  string
	category   string
	secretWord string
	round      int
	tally      *votes.Tally
	impostorID string
	winner     Winner
	lastTally  *TallyResult
	opts       Options
}

func New(code string, opts Options) *Game {
	def := DefaultOptions()
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = def.MinPlayers
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = def.MaxPlayers
	}
	if opts.Picker == nil {
		opts.Picker = roles.CryptoPicker
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &Game{
		code:     code,
		phase:    PhaseLobby,
		roster:   players.NewRoster(),
		wordMode: WordModeInteractive,
		tally:    votes.NewTally(),
		opts:     opts,
	}
}

func (g *Game) Code() string {
	return g.code
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) HostID() string {
	return g.hostID
}

func (g *Game) Empty() bool {
	return g.roster.Count() == 0
}

func (g *Game) Size() int {
	return g.roster.Count()
}

func (g *Game) ConnectedCount() int {
	return g.roster.ConnectedCount()
}

// Join admits a new player. Players joining after the lobby become spectators.
func (g *Game) Join(id, username string) (players.Player, error) {
	username = strings.TrimSpace(username)
	if err := checkText("username", username, maxUsernameLen); err != nil {
		return players.Player{}, err
	}
	if p := g.roster.Get(id); p != nil {
		return *p, nil
	}
	if g.roster.Count() >= g.opts.MaxPlayers {
		return players.Player{}, fmt.Errorf("%w: %d/%d players", ErrRoomFull, g.roster.Count(), g.opts.MaxPlayers)
	}

	role := players.RoleUnset
	if g.phase != PhaseLobby {
		role = players.RoleSpectator
	}
	p := g.roster.Add(id, username, role)
	if g.hostID == "" {
		g.hostID = id
	}
	return *p, nil
}

func (g *Game) Connect(id string) error {
	if g.roster.SetConnected(id, true) == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return nil
}

// Disconnect keeps the player's slot. During a round it may close the tally,
// since disconnected players no longer hold it open.
func (g *Game) Disconnect(id string) error {
	if g.roster.SetConnected(id, false) == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return g.closeRoundIfComplete()
}

// Leave removes the player outside a running game; during a game it is a
// disconnect. The host role passes to the next player in join order.
func (g *Game) Leave(id string) error {
	if _, err := g.actor(id); err != nil {
		return err
	}
	if g.phase.InProgress() {
		return g.Disconnect(id)
	}

	g.roster.Remove(id)
	kept := g.pool[:0]
	for _, e := range g.pool {
		if e.AddedBy != id {
			kept = append(kept, e)
		}
	}
	g.pool = kept

	if g.hostID == id {
		g.hostID = ""
		if next := g.roster.First(); next != nil {
			g.hostID = next.ID
		}
	}
	return nil
}

func (g *Game) Start(id string) error {
	if _, err := g.host(id); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return g.phaseError("start")
	}
	eligible := g.roster.Participants()
	if len(eligible) < g.opts.MinPlayers {
		return fmt.Errorf("%w: %d/%d", ErrNotEnoughPlayers, len(eligible), g.opts.MinPlayers)
	}

	if err := g.moveTo(PhaseAssignRoles); err != nil {
		return err
	}
	impostor, err := roles.PickImpostor(eligible, g.opts.Picker)
	if err != nil {
		g.phase = PhaseLobby
		return fmt.Errorf("%w: assigning roles: %v", ErrInternal, err)
	}
	g.impostorID = impostor
	for _, pid := range eligible {
		p := g.roster.Get(pid)
		p.Alive = true
		p.Role = players.RolePlayer
		if pid == impostor {
			p.Role = players.RoleImpostor
		}
	}

	if g.wordMode == WordModePool && g.seedFromPool() {
		return g.startRound(1)
	}
	return g.moveTo(PhaseCategoryInput)
}

// SubmitCategory adopts the first accepted category; later ones are rejected.
func (g *Game) SubmitCategory(id, value string) error {
	if err := g.checkSubmitter(id); err != nil {
		return err
	}
	if g.category != "" && g.phase.InProgress() {
		return fmt.Errorf("%w: category already chosen", ErrAlreadySubmitted)
	}
	if g.phase != PhaseCategoryInput {
		return g.phaseError("submit a category")
	}
	value = strings.TrimSpace(value)
	if err := checkText("category", value, maxValueLen); err != nil {
		return err
	}
	g.category = value
	return g.moveTo(PhaseWordInput)
}

// SubmitWord adopts the first accepted secret word and starts round one.
func (g *Game) SubmitWord(id, value string) error {
	if err := g.checkSubmitter(id); err != nil {
		return err
	}
	if g.secretWord != "" && g.phase.InProgress() {
		return fmt.Errorf("%w: secret word already chosen", ErrAlreadySubmitted)
	}
	if g.phase != PhaseWordInput {
		return g.phaseError("submit a word")
	}
	value = strings.TrimSpace(value)
	if err := checkText("word", value, maxValueLen); err != nil {
		return err
	}
	g.secretWord = value
	return g.startRound(1)
}

// Vote records voterID's choice for the current round, replacing any earlier
// one, and resolves the round once every connected voter has voted.
func (g *Game) Vote(voterID, targetID string) error {
	voter, err := g.actor(voterID)
	if err != nil {
		return err
	}
	if !g.phase.IsRound() {
		return g.phaseError("vote")
	}
	if !voter.CanAct() {
		return fmt.Errorf("%w: %s cannot vote", ErrNotAlive, voter.Username)
	}
	target := g.roster.Get(targetID)
	switch {
	case target == nil:
		return fmt.Errorf("%w: unknown player %s", ErrInvalidTarget, targetID)
	case target.ID == voter.ID:
		return fmt.Errorf("%w: cannot vote for yourself", ErrInvalidTarget)
	case !target.CanAct():
		return fmt.Errorf("%w: %s is not in play", ErrInvalidTarget, target.Username)
	}

	g.tally.Cast(voter.ID, target.ID)
	return g.closeRoundIfComplete()
}

// Reset returns a finished game to the lobby, keeping the roster.
func (g *Game) Reset(id string) error {
	if _, err := g.host(id); err != nil {
		return err
	}
	if g.phase != PhaseFinished {
		return g.phaseError("reset")
	}
	if err := g.moveTo(PhaseLobby); err != nil {
		return err
	}

	if g.usedEntry != "" {
		kept := g.pool[:0]
		for _, e := range g.pool {
			if e.ID != g.usedEntry {
				kept = append(kept, e)
			}
		}
		g.pool = kept
	}
	g.usedEntry = ""
	g.category = ""
	g.secretWord = ""
	g.round = 0
	g.tally.Clear()
	g.impostorID = ""
	g.winner = WinnerNone
	g.lastTally = nil
	g.roster.ResetAll()
	return nil
}

func (g *Game) SetWordMode(id string, mode WordMode) error {
	if _, err := g.host(id); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return g.phaseError("change the word mode")
	}
	switch mode {
	case WordModeInteractive, WordModePool:
		g.wordMode = mode
		return nil
	}
	return fmt.Errorf("%w: unknown word mode %q", ErrInvalidInput, mode)
}

// AddWord contributes a word/hint pair to the lobby's pool.
func (g *Game) AddWord(id, word, hint string) (WordEntry, error) {
	if _, err := g.actor(id); err != nil {
		return WordEntry{}, err
	}
	if g.phase != PhaseLobby {
		return WordEntry{}, g.phaseError("add a word")
	}
	if g.wordMode != WordModePool {
		return WordEntry{}, fmt.Errorf("%w: the word pool is only used in %s mode", ErrInvalidPhase, WordModePool)
	}
	word = strings.TrimSpace(word)
	hint = strings.TrimSpace(hint)
	if err := checkText("word", word, maxValueLen); err != nil {
		return WordEntry{}, err
	}
	if err := checkText("hint", hint, maxValueLen); err != nil {
		return WordEntry{}, err
	}
	if len(g.pool) >= maxPoolSize {
		return WordEntry{}, fmt.Errorf("%w: word pool is full", ErrInvalidInput)
	}

	e := WordEntry{ID: g.opts.NewID(), Word: word, Hint: hint, AddedBy: id}
	g.pool = append(g.pool, e)
	return e, nil
}

// RemoveWord drops a pool entry. Only its author or the host may do so.
func (g *Game) RemoveWord(id, entryID string) error {
	if _, err := g.actor(id); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return g.phaseError("remove a word")
	}
	for i, e := range g.pool {
		if e.ID != entryID {
			continue
		}
		if e.AddedBy != id && g.hostID != id {
			return fmt.Errorf("%w: only the author or the host can remove a word", ErrForbidden)
		}
		g.pool = append(g.pool[:i], g.pool[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: unknown word entry %s", ErrInvalidInput, entryID)
}

func (g *Game) actor(id string) (*players.Player, error) {
	p := g.roster.Get(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

func (g *Game) host(id string) (*players.Player, error) {
	p, err := g.actor(id)
	if err != nil {
		return nil, err
	}
	if g.hostID != id {
		return nil, ErrNotHost
	}
	return p, nil
}

// checkSubmitter applies the rules shared by category and word submissions.
func (g *Game) checkSubmitter(id string) error {
	p, err := g.actor(id)
	if err != nil {
		return err
	}
	if !p.CanAct() {
		return fmt.Errorf("%w: %s cannot submit", ErrNotAlive, p.Username)
	}
	if g.impostorID != "" && id == g.impostorID {
		return fmt.Errorf("%w: the impostor cannot choose the word", ErrForbidden)
	}
	return nil
}

func (g *Game) phaseError(action string) error {
	return fmt.Errorf("%w: cannot %s during %s", ErrInvalidPhase, action, g.phase)
}

func (g *Game) moveTo(next Phase) error {
	if !g.phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: illegal transition %s -> %s", ErrInternal, g.phase, next)
	}
	g.phase = next
	return nil
}

func (g *Game) startRound(n int) error {
	next, err := RoundPhase(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := g.moveTo(next); err != nil {
		return err
	}
	g.round = n
	g.tally.Clear()
	return nil
}

// seedFromPool fills category and secret word from a pool entry the impostor
// did not write, falling back to the server bank.
func (g *Game) seedFromPool() bool {
	var candidates []WordEntry
	for _, e := range g.pool {
		if e.AddedBy != g.impostorID {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) > 0 {
		i, err := g.opts.Picker(len(candidates))
		if err == nil && i >= 0 && i < len(candidates) {
			e := candidates[i]
			g.category, g.secretWord, g.usedEntry = e.Hint, e.Word, e.ID
			return true
		}
	}
	e, err := g.opts.Bank.Random(g.opts.Picker)
	if err != nil {
		return false
	}
	g.category, g.secretWord = e.Category, e.Word
	return true
}

func (g *Game) closeRoundIfComplete() error {
	if !g.phase.IsRound() {
		return nil
	}
	if !g.tally.Complete(g.roster.Voters(true)) {
		return nil
	}

	out := g.tally.Resolve()
	res := &TallyResult{Round: g.round, Counts: out.Counts, Tie: out.Tie}
	if out.Eliminated != "" {
		if p := g.roster.Get(out.Eliminated); p != nil {
			p.Alive = false
			res.EliminatedID = p.ID
			res.EliminatedRole = p.Role
		}
	}
	g.lastTally = res

	switch {
	case res.EliminatedID != "" && res.EliminatedID == g.impostorID:
		g.winner = WinnerPlayers
	case g.round >= MaxRounds:
		g.winner = WinnerImpostor
	default:
		return g.startRound(g.round + 1)
	}
	g.tally.Clear()
	return g.moveTo(PhaseFinished)
}

func checkText(field, v string, max int) error {
	if v == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s longer than %d characters", ErrInvalidInput, field, max)
	}
	return nil
}
