package floating

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/featvid/featvid/internal/content"
	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/httputil"
	"github.com/featvid/featvid/internal/settings"
	"github.com/featvid/featvid/internal/validate"
)

const (
	pageSearchLimit = 20
	termSearchLimit = 30

	// Caps for the one-shot candidate lists on the options endpoint.
	optionsPageLimit = 200
	optionsTermLimit = 100
)

type Handler struct {
	db       database.DBTX
	resolver *Resolver
	settings *settings.Store
}

func NewHandler(db database.DBTX, resolver *Resolver, store *settings.Store) *Handler {
	return &Handler{db: db, resolver: resolver, settings: store}
}

type recordRequest struct {
	Title            string           `json:"title"`
	Status           string           `json:"status"`
	VideoSource      string           `json:"videoSource"`
	VideoID          int64            `json:"videoId"`
	EmbedURL         string           `json:"embedUrl"`
	DisplayType      string           `json:"displayType"`
	PageIDs          []int64          `json:"pageIds"`
	TargetPostTypes  []string         `json:"targetPostTypes"`
	TargetTaxonomies []TaxonomyTarget `json:"targetTaxonomies"`
}

func (req recordRequest) toRecord() (Record, error) {
	if req.Status == "" {
		req.Status = StatusPublish
	}
	if req.VideoSource == "" {
		req.VideoSource = SourceSelf
	}
	if req.DisplayType == "" {
		req.DisplayType = DisplaySitewide
	}

	if req.Title == "" {
		return Record{}, errors.New("title is required")
	}
	if msg := validate.Title(req.Title); msg != "" {
		return Record{}, errors.New(msg)
	}
	if req.Status != StatusPublish && req.Status != StatusDraft {
		return Record{}, fmt.Errorf("status must be %q or %q", StatusPublish, StatusDraft)
	}
	switch req.VideoSource {
	case SourceSelf:
		if req.VideoID <= 0 {
			return Record{}, errors.New("videoId is required for self-hosted videos")
		}
		req.EmbedURL = ""
	case SourceEmbed:
		if req.EmbedURL == "" {
			return Record{}, errors.New("embedUrl is required for embedded videos")
		}
		if msg := validate.EmbedURL(req.EmbedURL); msg != "" {
			return Record{}, errors.New(msg)
		}
		req.VideoID = 0
	default:
		return Record{}, fmt.Errorf("videoSource must be %q or %q", SourceSelf, SourceEmbed)
	}
	switch req.DisplayType {
	case DisplaySitewide, DisplaySpecificPages, DisplayPostTypes, DisplayTaxonomies:
	default:
		return Record{}, fmt.Errorf("unknown display type %q", req.DisplayType)
	}
	for _, target := range req.TargetTaxonomies {
		if msg := validate.Taxonomy(target.Taxonomy); msg != "" {
			return Record{}, errors.New(msg)
		}
	}
	for _, postType := range req.TargetPostTypes {
		if msg := validate.PostType(postType); msg != "" {
			return Record{}, errors.New(msg)
		}
	}

	return Record{
		Title:       req.Title,
		Status:      req.Status,
		VideoSource: req.VideoSource,
		VideoID:     req.VideoID,
		EmbedURL:    req.EmbedURL,
		Rule: Rule{
			DisplayType:      req.DisplayType,
			PageIDs:          req.PageIDs,
			TargetPostTypes:  req.TargetPostTypes,
			TargetTaxonomies: req.TargetTaxonomies,
		},
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := listRecords(r.Context(), h.db, false, ListLimit)
	if err != nil {
		slog.Error("failed to list floating videos", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list floating videos")
		return
	}
	if records == nil {
		records = []Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := insertRecord(r.Context(), h.db, rec)
	if err != nil {
		slog.Error("failed to create floating video", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create floating video")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid floating video id")
		return
	}
	rec, err := getRecord(r.Context(), h.db, id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "floating video not found")
		return
	}
	if err != nil {
		slog.Error("failed to load floating video", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load floating video")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid floating video id")
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.ID = id

	saved, err := updateRecord(r.Context(), h.db, rec)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "floating video not found")
		return
	}
	if err != nil {
		slog.Error("failed to update floating video", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update floating video")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid floating video id")
		return
	}
	err = deleteRecord(r.Context(), h.db, id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "floating video not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete floating video", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete floating video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionItem is one entry in the page and term pickers.
type optionItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

func (h *Handler) SearchPages(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if msg := validate.SearchTerm(search); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	posts, err := content.SearchPosts(r.Context(), h.db, search, pageSearchLimit)
	if err != nil {
		slog.Error("failed to search pages", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to search pages")
		return
	}

	items := make([]optionItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, optionItem{ID: p.ID, Label: pageLabel(p)})
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	post, err := content.GetPost(r.Context(), h.db, id)
	if errors.Is(err, content.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "page not found")
		return
	}
	if err != nil {
		slog.Error("failed to load page", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, optionItem{ID: post.ID, Label: pageLabel(post)})
}

func (h *Handler) SearchTerms(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if msg := validate.SearchTerm(search); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	terms, err := content.SearchTerms(r.Context(), h.db, search, termSearchLimit)
	if err != nil {
		slog.Error("failed to search terms", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to search terms")
		return
	}

	items := make([]optionItem, 0, len(terms))
	for _, t := range terms {
		label, err := h.termLabel(r, t)
		if err != nil {
			slog.Error("failed to label term", "id", t.ID, "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to search terms")
			return
		}
		items = append(items, optionItem{ID: t.ID, Label: label})
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid term id")
		return
	}
	term, err := content.GetTerm(r.Context(), h.db, id)
	if errors.Is(err, content.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "term not found")
		return
	}
	if err != nil {
		slog.Error("failed to load term", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load term")
		return
	}
	label, err := h.termLabel(r, term)
	if err != nil {
		slog.Error("failed to label term", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load term")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, optionItem{ID: term.ID, Label: label})
}

func pageLabel(p content.Post) string {
	return fmt.Sprintf("%s (%s)", p.Title, content.PostTypeSingular(p.PostType))
}

func (h *Handler) termLabel(r *http.Request, t content.Term) (string, error) {
	singular, err := content.TaxonomySingular(r.Context(), h.db, t.Taxonomy)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s)", t.Name, singular), nil
}

type playerSettings struct {
	SelfControls  settings.Controls `json:"selfControls"`
	EmbedControls settings.Controls `json:"embedControls"`
	Layout        string            `json:"layout"`
	AspectRatio   string            `json:"aspectRatio"`
}

type taxonomyOption struct {
	Taxonomy string       `json:"taxonomy"`
	Label    string       `json:"label"`
	Terms    []optionItem `json:"terms"`
}

// optionsResponse bundles the player settings with the targeting
// candidates the admin UI builds its pickers from. The search endpoints
// cover anything past the candidate caps.
type optionsResponse struct {
	playerSettings
	Pages      []optionItem          `json:"pages"`
	PostTypes  []content.PostTypeDef `json:"postTypes"`
	Taxonomies []taxonomyOption      `json:"taxonomies"`
}

func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	ps, err := h.readSettings(r)
	if err != nil {
		slog.Error("failed to load options", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load options")
		return
	}

	resp := optionsResponse{playerSettings: ps, PostTypes: content.PublicPostTypes()}

	posts, err := content.ListPosts(r.Context(), h.db, optionsPageLimit)
	if err != nil {
		slog.Error("failed to list targeting pages", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load options")
		return
	}
	resp.Pages = make([]optionItem, 0, len(posts))
	for _, p := range posts {
		resp.Pages = append(resp.Pages, optionItem{ID: p.ID, Label: pageLabel(p)})
	}

	taxonomies, err := content.PublicTaxonomies(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list taxonomies", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load options")
		return
	}
	resp.Taxonomies = make([]taxonomyOption, 0, len(taxonomies))
	for _, tx := range taxonomies {
		terms, err := content.TermsByTaxonomy(r.Context(), h.db, tx.Name, optionsTermLimit)
		if err != nil {
			slog.Error("failed to list taxonomy terms", "taxonomy", tx.Name, "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load options")
			return
		}
		items := make([]optionItem, 0, len(terms))
		for _, t := range terms {
			items = append(items, optionItem{ID: t.ID, Label: fmt.Sprintf("%s (%s)", t.Name, tx.Singular)})
		}
		resp.Taxonomies = append(resp.Taxonomies, taxonomyOption{Taxonomy: tx.Name, Label: tx.Label, Terms: items})
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var req playerSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Layout != "standard" && req.Layout != "story" {
		httputil.WriteError(w, http.StatusBadRequest, "layout must be \"standard\" or \"story\"")
		return
	}

	ctx := r.Context()
	writes := []struct {
		key   string
		value any
	}{
		{settings.SelfControlsKey, req.SelfControls},
		{settings.EmbedControlsKey, req.EmbedControls},
		{settings.LayoutKey, req.Layout},
		{settings.AspectRatioKey, req.AspectRatio},
	}
	for _, wr := range writes {
		if err := h.settings.Set(ctx, wr.key, wr.value); err != nil {
			slog.Error("failed to save options", "key", wr.key, "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to save options")
			return
		}
	}

	resp, err := h.readSettings(r)
	if err != nil {
		slog.Error("failed to load options", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load options")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) readSettings(r *http.Request) (playerSettings, error) {
	ctx := r.Context()
	selfControls, err := h.settings.VideoControls(ctx, SourceSelf)
	if err != nil {
		return playerSettings{}, err
	}
	embedControls, err := h.settings.VideoControls(ctx, SourceEmbed)
	if err != nil {
		return playerSettings{}, err
	}
	layout, err := h.settings.Layout(ctx)
	if err != nil {
		return playerSettings{}, err
	}
	ratio, err := h.settings.AspectRatio(ctx)
	if err != nil {
		return playerSettings{}, err
	}
	return playerSettings{
		SelfControls:  selfControls,
		EmbedControls: embedControls,
		Layout:        layout,
		AspectRatio:   ratio,
	}, nil
}

type limitsResponse struct {
	ListLimit       int            `json:"listLimit"`
	PageSearchLimit int            `json:"pageSearchLimit"`
	TermSearchLimit int            `json:"termSearchLimit"`
	FieldLimits     map[string]int `json:"fieldLimits"`
}

// Limits tells the admin UI the server-side caps so both sides agree.
func (h *Handler) Limits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, limitsResponse{
		ListLimit:       ListLimit,
		PageSearchLimit: pageSearchLimit,
		TermSearchLimit: termSearchLimit,
		FieldLimits:     validate.FieldLimits(),
	})
}

// Payload serves the public frontend endpoint. No matching video yields a
// 204 so the player script knows to render nothing.
func (h *Handler) Payload(w http.ResponseWriter, r *http.Request) {
	view, err := ContextFromQuery(r.Context(), h.db, r.URL.Query())
	if errors.Is(err, content.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "queried object not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.resolver.Resolve(r.Context(), view)
	if err != nil {
		slog.Error("failed to resolve floating video payload", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to resolve floating video")
		return
	}
	if payload == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payload)
}
