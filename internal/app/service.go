package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"tailless/api/internal/ai"
	"tailless/api/internal/auth"
	"tailless/api/internal/config"
	"tailless/api/internal/search"
	"tailless/api/internal/session"
	"tailless/api/internal/store"
	"tailless/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	UserEmail    string
	UserImage    string
	JTI          string
	ExpiresAt    time.Time
}

type CreateSpaceInput struct {
	Title        string   `json:"title"`
	Image        string   `json:"image"`
	Description  string   `json:"description"`
	Contributors []string `json:"contributors"`
	Tags         []string `json:"tags"`
	Layout       string   `json:"layout"`
}

type UpdateSpaceInput struct {
	Title        *string   `json:"title"`
	Image        *string   `json:"image"`
	Description  *string   `json:"description"`
	Layout       *string   `json:"layout"`
	Contributors *[]string `json:"contributors"`
	Tags         *[]string `json:"tags"`
	Moments      *[]string `json:"moments"`
}

type CreateMomentInput struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

type UpdateMomentInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type TextGenerationInput struct {
	Role      ai.Role        `json:"role"`
	Prompt    string         `json:"prompt"`
	Knowledge []string       `json:"knowledge"`
	Refine    []string       `json:"refine"`
	Options   ai.TextOptions `json:"options"`
}

// TagScore pairs a generated tag with its similarity to a Space title.
type TagScore struct {
	Tag        string  `json:"tag"`
	Similarity float64 `json:"similarity"`
}

// SpaceRecommendation is one Space that matched the recommendation pipeline.
type SpaceRecommendation struct {
	ID        string     `json:"id"`
	TagScores []TagScore `json:"tagScores"`
}

type dataStore interface {
	UpsertUser(context.Context, store.User) (store.User, error)
	GetUser(context.Context, string) (store.User, error)
	ListUsers(context.Context, []store.Filter) ([]store.User, error)
	InsertSpace(context.Context, store.Space) error
	GetSpace(context.Context, string) (store.Space, error)
	ListSpaces(context.Context, []store.Filter) ([]store.Space, error)
	UpdateSpace(context.Context, string, store.SpacePatch) error
	DeleteSpace(context.Context, string) error
	SpaceTitleExists(context.Context, string) (bool, error)
	InsertMoment(context.Context, store.Moment) error
	GetMoment(context.Context, string) (store.Moment, error)
	ListMoments(context.Context, []store.Filter) ([]store.Moment, error)
	UpdateMoment(context.Context, string, store.MomentPatch) error
	DeleteMomentCascade(context.Context, string) error
	ListSpacesContainingMoment(context.Context, string) ([]store.Space, error)
	Ping(context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(context.Context, string, store.User, time.Time) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeRefreshSession(context.Context, string) error
	SaveOAuthState(context.Context, string, time.Duration) error
	ConsumeOAuthState(context.Context, string) (bool, error)
	Ping(context.Context) error
}

type identityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

type aiService interface {
	GenerateText(ctx context.Context, system, prompt string, opts ai.TextOptions) (string, error)
	RunAction(ctx context.Context, action ai.Action, content string) (string, error)
	GenerateTags(ctx context.Context, content string, opts ai.TagOptions) ([]string, error)
	Similarity(ctx context.Context, content, target string, tier ai.ModelTier) (float64, error)
	Similarities(ctx context.Context, contents, targets []string, tier ai.ModelTier) ([]ai.SimilarityScore, error)
	ExtractKeywords(ctx context.Context, content string) ([]string, error)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	identity identityProvider
	ai       aiService
	search   *search.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions *session.RedisStore, identity *auth.GoogleProvider, aiClient *ai.Client, searchService *search.Service) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		identity: identity,
		ai:       aiClient,
		search:   searchService,
	}
}

// ── Sessions ──

// SignIn starts the OAuth flow and returns the provider URL to redirect to.
func (s *Service) SignIn(ctx context.Context) (string, error) {
	state := util.NewID("state")
	if err := s.sessions.SaveOAuthState(ctx, state, 10*time.Minute); err != nil {
		return "", err
	}
	return s.identity.AuthURL(state), nil
}

// HandleCallback finishes the OAuth flow: verifies the state, exchanges the
// code, upserts the user, and issues a session.
func (s *Service) HandleCallback(ctx context.Context, state, code string) (Session, error) {
	ok, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, domainError(http.StatusUnauthorized, msgUnauthorized)
	}

	profile, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, msgUnauthorized)
	}

	user, err := s.store.UpsertUser(ctx, store.User{
		ID:    profile.Sub,
		Name:  profile.Name,
		Email: profile.Email,
		Image: profile.Picture,
	})
	if err != nil {
		return Session{}, err
	}

	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, msgUnauthorized)
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:   user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.Name,
		UserEmail:    user.Email,
		UserImage:    user.Image,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken validates an access token. The claims carry the profile, so
// no store lookup is needed.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    claims.Sub,
		UserName:  claims.Name,
		UserEmail: claims.Email,
		UserImage: claims.Image,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ── Users ──

func (s *Service) GetUser(ctx context.Context, userID string) (store.User, error) {
	if strings.TrimSpace(userID) == "" {
		return store.User{}, domainError(http.StatusBadRequest, msgUserIDRequired)
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, domainError(http.StatusNotFound, msgUserNotFound)
	}
	if err != nil {
		return store.User{}, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, name, email string) ([]store.User, error) {
	var filters []store.Filter
	if name != "" {
		filters = append(filters, store.Prefix("name", name))
	}
	if email != "" {
		filters = append(filters, store.Equals("email", email))
	}
	return s.store.ListUsers(ctx, filters)
}

// ── Spaces ──

func (s *Service) CreateSpace(ctx context.Context, sess Session, input CreateSpaceInput) (store.Space, error) {
	if strings.TrimSpace(input.Title) == "" || len(input.Contributors) == 0 {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	if input.Layout == "" {
		input.Layout = store.LayoutBlog
	}
	if !store.ValidLayout(input.Layout) {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	if !contains(input.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}

	exists, err := s.store.SpaceTitleExists(ctx, input.Title)
	if err != nil {
		return store.Space{}, err
	}
	if exists {
		return store.Space{}, domainError(http.StatusConflict, msgSpaceTitleTaken)
	}

	space := store.Space{
		ID:           util.NewID("spc"),
		Title:        input.Title,
		Image:        input.Image,
		Description:  input.Description,
		Contributors: input.Contributors,
		Tags:         dedupe(input.Tags),
		Moments:      []string{},
		Layout:       input.Layout,
	}
	if err := s.store.InsertSpace(ctx, space); err != nil {
		return store.Space{}, err
	}

	created, err := s.store.GetSpace(ctx, space.ID)
	if err != nil {
		return store.Space{}, err
	}
	s.indexSpace(created)
	return created, nil
}

func (s *Service) GetSpace(ctx context.Context, spaceID string) (store.Space, error) {
	if strings.TrimSpace(spaceID) == "" {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	space, err := s.store.GetSpace(ctx, spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Space{}, domainError(http.StatusNotFound, msgSpaceNotFound)
	}
	if err != nil {
		return store.Space{}, err
	}
	return space, nil
}

func (s *Service) ListSpaces(ctx context.Context, title string, tags, contributors []string) ([]store.Space, error) {
	var filters []store.Filter
	if title != "" {
		filters = append(filters, store.Prefix("title", title))
	}
	if len(tags) > 0 {
		filters = append(filters, store.AnyOf("tags", tags))
	}
	if len(contributors) > 0 {
		filters = append(filters, store.AnyOf("contributors", contributors))
	}
	return s.store.ListSpaces(ctx, filters)
}

func (s *Service) UpdateSpace(ctx context.Context, sess Session, spaceID string, input UpdateSpaceInput) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}
	if input.Layout != nil && !store.ValidLayout(*input.Layout) {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	if input.Contributors != nil && len(*input.Contributors) == 0 {
		return store.Space{}, domainError(http.StatusBadRequest, msgBadInput)
	}

	if input.Title != nil && *input.Title != space.Title {
		exists, err := s.store.SpaceTitleExists(ctx, *input.Title)
		if err != nil {
			return store.Space{}, err
		}
		if exists {
			return store.Space{}, domainError(http.StatusConflict, msgSpaceTitleTaken)
		}
	}

	patch := store.SpacePatch{
		Title:        input.Title,
		Image:        input.Image,
		Description:  input.Description,
		Layout:       input.Layout,
		Contributors: input.Contributors,
		Tags:         input.Tags,
		Moments:      input.Moments,
	}
	if err := s.store.UpdateSpace(ctx, spaceID, patch); err != nil {
		return store.Space{}, err
	}

	updated, err := s.store.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	s.indexSpace(updated)
	return updated, nil
}

func (s *Service) DeleteSpace(ctx context.Context, sess Session, spaceID string) error {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return err
	}
	if !contains(space.Contributors, sess.UserID) {
		return domainError(http.StatusForbidden, msgForbidden)
	}
	if err := s.store.DeleteSpace(ctx, spaceID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteSpace(spaceID)
	}
	return nil
}

// ── Space membership ──

func (s *Service) AddMomentToSpace(ctx context.Context, sess Session, spaceID, momentID string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}

	moment, err := s.GetMoment(ctx, momentID)
	if err != nil {
		return store.Space{}, err
	}
	if moment.Author != sess.UserID {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}

	if contains(space.Moments, momentID) {
		return store.Space{}, domainError(http.StatusConflict, msgMomentAlreadyAdded)
	}

	moments := append(append([]string{}, space.Moments...), momentID)
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Moments: &moments}); err != nil {
		return store.Space{}, err
	}
	return s.store.GetSpace(ctx, spaceID)
}

func (s *Service) RemoveMomentFromSpace(ctx context.Context, sess Session, spaceID, momentID string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}

	moment, err := s.GetMoment(ctx, momentID)
	if err != nil {
		return store.Space{}, err
	}
	if moment.Author != sess.UserID {
		return store.Space{}, domainError(http.StatusForbidden, msgForbidden)
	}

	if !contains(space.Moments, momentID) {
		return store.Space{}, domainError(http.StatusConflict, msgMomentNotInSpace)
	}

	moments := remove(space.Moments, momentID)
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Moments: &moments}); err != nil {
		return store.Space{}, err
	}
	return s.store.GetSpace(ctx, spaceID)
}

// ── Contributors ──

func (s *Service) AddContributor(ctx context.Context, sess Session, spaceID, userID string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgContributorOnlyAdd)
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Space{}, domainError(http.StatusNotFound, msgTargetUserMissing)
		}
		return store.Space{}, err
	}

	if contains(space.Contributors, userID) {
		return store.Space{}, domainError(http.StatusConflict, msgAlreadyContributor)
	}

	contributors := append(append([]string{}, space.Contributors...), userID)
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Contributors: &contributors}); err != nil {
		return store.Space{}, err
	}
	return s.store.GetSpace(ctx, spaceID)
}

// RemoveContributor removes the calling user from the Space; nobody can remove
// anyone else.
func (s *Service) RemoveContributor(ctx context.Context, sess Session, spaceID string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusNotFound, msgNotContributor)
	}
	if len(space.Contributors) == 1 {
		return store.Space{}, domainError(http.StatusForbidden, msgLastContributor)
	}

	contributors := remove(space.Contributors, sess.UserID)
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Contributors: &contributors}); err != nil {
		return store.Space{}, err
	}
	return s.store.GetSpace(ctx, spaceID)
}

// ── Tags ──

func (s *Service) AddTags(ctx context.Context, sess Session, spaceID string, tags []string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgTagForbidden)
	}

	merged := dedupe(append(append([]string{}, space.Tags...), tags...))
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Tags: &merged}); err != nil {
		return store.Space{}, err
	}

	updated, err := s.store.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	s.indexSpace(updated)
	return updated, nil
}

func (s *Service) DeleteTags(ctx context.Context, sess Session, spaceID string, tags []string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgTagForbidden)
	}

	remaining := make([]string, 0, len(space.Tags))
	for _, tag := range space.Tags {
		if !contains(tags, tag) {
			remaining = append(remaining, tag)
		}
	}
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Tags: &remaining}); err != nil {
		return store.Space{}, err
	}

	updated, err := s.store.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	s.indexSpace(updated)
	return updated, nil
}

func (s *Service) DeleteAllTags(ctx context.Context, sess Session, spaceID string) (store.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	if !contains(space.Contributors, sess.UserID) {
		return store.Space{}, domainError(http.StatusForbidden, msgTagForbidden)
	}

	empty := []string{}
	if err := s.store.UpdateSpace(ctx, spaceID, store.SpacePatch{Tags: &empty}); err != nil {
		return store.Space{}, err
	}

	updated, err := s.store.GetSpace(ctx, spaceID)
	if err != nil {
		return store.Space{}, err
	}
	s.indexSpace(updated)
	return updated, nil
}

// ── Moments ──

func (s *Service) CreateMoment(ctx context.Context, sess Session, input CreateMomentInput) (store.Moment, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Author) == "" {
		return store.Moment{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	if input.Author != sess.UserID {
		return store.Moment{}, domainError(http.StatusForbidden, msgForbidden)
	}

	moment := store.Moment{
		ID:      util.NewID("mnt"),
		Title:   input.Title,
		Author:  input.Author,
		Content: input.Content,
	}
	if err := s.store.InsertMoment(ctx, moment); err != nil {
		return store.Moment{}, err
	}

	created, err := s.store.GetMoment(ctx, moment.ID)
	if err != nil {
		return store.Moment{}, err
	}
	s.indexMoment(created)
	return created, nil
}

func (s *Service) GetMoment(ctx context.Context, momentID string) (store.Moment, error) {
	if strings.TrimSpace(momentID) == "" {
		return store.Moment{}, domainError(http.StatusBadRequest, msgBadInput)
	}
	moment, err := s.store.GetMoment(ctx, momentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Moment{}, domainError(http.StatusNotFound, msgMomentNotFound)
	}
	if err != nil {
		return store.Moment{}, err
	}
	return moment, nil
}

func (s *Service) ListMoments(ctx context.Context, title, author string) ([]store.Moment, error) {
	var filters []store.Filter
	if title != "" {
		filters = append(filters, store.Prefix("title", title))
	}
	if author != "" {
		filters = append(filters, store.Equals("author", author))
	}
	return s.store.ListMoments(ctx, filters)
}

func (s *Service) UpdateMoment(ctx context.Context, sess Session, momentID string, input UpdateMomentInput) (store.Moment, error) {
	moment, err := s.GetMoment(ctx, momentID)
	if err != nil {
		return store.Moment{}, err
	}
	if moment.Author != sess.UserID {
		return store.Moment{}, domainError(http.StatusForbidden, msgForbidden)
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return store.Moment{}, domainError(http.StatusBadRequest, msgBadInput)
	}

	patch := store.MomentPatch{Title: input.Title, Content: input.Content}
	if err := s.store.UpdateMoment(ctx, momentID, patch); err != nil {
		return store.Moment{}, err
	}

	updated, err := s.store.GetMoment(ctx, momentID)
	if err != nil {
		return store.Moment{}, err
	}
	s.indexMoment(updated)
	return updated, nil
}

// DeleteMoment deletes the Moment and detaches it from every Space that lists
// it, atomically.
func (s *Service) DeleteMoment(ctx context.Context, sess Session, momentID string) error {
	moment, err := s.GetMoment(ctx, momentID)
	if err != nil {
		return err
	}
	if moment.Author != sess.UserID {
		return domainError(http.StatusForbidden, msgForbidden)
	}

	if err := s.store.DeleteMomentCascade(ctx, momentID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteMoment(momentID)
	}
	return nil
}

// ── AI ──

func (s *Service) GenerateText(ctx context.Context, input TextGenerationInput) (string, error) {
	if strings.TrimSpace(input.Prompt) == "" || input.Role.Name == "" {
		return "", domainError(http.StatusBadRequest, msgBadInput)
	}
	refine := input.Refine
	if refine == nil {
		refine = ai.DefaultRefinements()
	}
	system := ai.BuildSystemPrompt(input.Role, input.Knowledge, refine)
	text, err := s.ai.GenerateText(ctx, system, input.Prompt, input.Options)
	if err != nil {
		return "", aiFailure(err, msgAITextFailed)
	}
	return text, nil
}

func (s *Service) RunAction(ctx context.Context, action ai.Action, content string) (string, error) {
	if !ai.ValidAction(action) || strings.TrimSpace(content) == "" {
		return "", domainError(http.StatusBadRequest, msgBadInput)
	}
	text, err := s.ai.RunAction(ctx, action, content)
	if err != nil {
		return "", aiFailure(err, msgAITextFailed)
	}
	return text, nil
}

func (s *Service) GenerateTags(ctx context.Context, content string, opts ai.TagOptions) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domainError(http.StatusBadRequest, msgBadInput)
	}
	tags, err := s.ai.GenerateTags(ctx, content, opts)
	if err != nil {
		return nil, aiFailure(err, msgAITextFailed)
	}
	return tags, nil
}

func (s *Service) Similarity(ctx context.Context, content, target string, tier ai.ModelTier) (float64, error) {
	if strings.TrimSpace(content) == "" || strings.TrimSpace(target) == "" {
		return 0, domainError(http.StatusBadRequest, msgBadInput)
	}
	similarity, err := s.ai.Similarity(ctx, content, target, tier)
	if err != nil {
		return 0, aiFailure(err, msgAITextFailed)
	}
	return similarity, nil
}

func (s *Service) Similarities(ctx context.Context, contents, targets []string, tier ai.ModelTier) ([]ai.SimilarityScore, error) {
	if len(contents) == 0 || len(targets) == 0 {
		return nil, domainError(http.StatusBadRequest, msgBadInput)
	}
	scores, err := s.ai.Similarities(ctx, contents, targets, tier)
	if err != nil {
		return nil, aiFailure(err, msgAITextFailed)
	}
	return scores, nil
}

func (s *Service) ExtractKeywords(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domainError(http.StatusBadRequest, msgBadInput)
	}
	keywords, err := s.ai.ExtractKeywords(ctx, content)
	if err != nil {
		return nil, aiFailure(err, msgAIKeywordFailed)
	}
	return keywords, nil
}

// RecommendSpaces extracts tags from the content, scores every tag against
// every Space title, and keeps Spaces with at least one tag above the
// threshold. Result order follows the stored Space order.
func (s *Service) RecommendSpaces(ctx context.Context, content string) ([]SpaceRecommendation, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domainError(http.StatusBadRequest, msgBadInput)
	}

	tags, err := s.ai.GenerateTags(ctx, content, ai.TagOptions{Max: s.cfg.RecommendMaxTags})
	if err != nil {
		return nil, aiFailure(err, msgAITextFailed)
	}

	spaces, err := s.store.ListSpaces(ctx, nil)
	if err != nil {
		return nil, domainError(http.StatusInternalServerError, msgSpaceListFailed)
	}
	if len(spaces) == 0 || len(tags) == 0 {
		return []SpaceRecommendation{}, nil
	}

	titles := make([]string, len(spaces))
	for i, space := range spaces {
		titles[i] = space.Title
	}

	scores, err := s.ai.Similarities(ctx, tags, titles, ai.ModelLow)
	if err != nil {
		return nil, aiFailure(err, msgAITextFailed)
	}

	threshold := s.cfg.RecommendThreshold
	recommendations := make([]SpaceRecommendation, 0, len(spaces))
	for _, space := range spaces {
		var tagScores []TagScore
		for _, tag := range tags {
			similarity := findSimilarity(scores, tag, space.Title)
			if similarity >= threshold {
				tagScores = append(tagScores, TagScore{Tag: tag, Similarity: similarity})
			}
		}
		if len(tagScores) > 0 {
			recommendations = append(recommendations, SpaceRecommendation{ID: space.ID, TagScores: tagScores})
		}
	}
	return recommendations, nil
}

// ── Search & health ──

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return err
	}
	return s.sessions.Ping(ctx)
}

func (s *Service) indexSpace(space store.Space) {
	if s.search == nil {
		return
	}
	s.search.IndexSpace(search.SpaceRecord{
		ID:          space.ID,
		Title:       space.Title,
		Description: space.Description,
		Tags:        space.Tags,
	})
}

func (s *Service) indexMoment(moment store.Moment) {
	if s.search == nil {
		return
	}
	s.search.IndexMoment(search.MomentRecord{
		ID:      moment.ID,
		Title:   moment.Title,
		Content: moment.Content,
		Author:  moment.Author,
	})
}

// aiFailure maps an upstream model error to the 502 envelope. DomainErrors
// (already classified) pass through.
func aiFailure(err error, message string) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domainError(http.StatusBadGateway, message)
}

func findSimilarity(scores []ai.SimilarityScore, tag, title string) float64 {
	for _, score := range scores {
		if score.Content == tag && score.Target == title {
			return score.Similarity
		}
	}
	return 0
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func remove(values []string, value string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != value {
			result = append(result, v)
		}
	}
	return result
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
