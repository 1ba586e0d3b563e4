package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/dto"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/filter"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/store"
)

// homeFeedSize is the number of recipes on the anonymous landing page.
const homeFeedSize = 6

func (s *Server) registerPageRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(s.refreshPageSession)

		r.Get("/", s.pageHome)
		r.Get("/login", s.pageLogin)
		r.Get("/signup", s.pageSignup)
		r.With(RateLimitMiddleware(s.authRateLimiter, s.logger)).Post("/login", s.submitLogin)
		r.With(RateLimitMiddleware(s.authRateLimiter, s.logger)).Post("/signup", s.submitSignup)
		r.Get("/logout", s.submitLogout)
		r.Post("/logout", s.submitLogout)

		r.Get("/explore", s.pageExplore)
		r.Get("/search", s.pageSearch)
		r.Get("/dashboard", requireSignIn(s.pageDashboard))
		r.Get("/saved", requireSignIn(s.pageSaved))
		r.Get("/my-recipes", requireSignIn(s.pageMyRecipes))

		r.Get("/recipes/new", requireSignIn(s.pageNewRecipe))
		r.Post("/recipes/new", requireSignIn(s.submitNewRecipe))
		r.Get("/recipes/{id}", s.pageRecipe)
		r.Get("/recipes/{id}/{slug}", s.pageRecipe)
		r.Get("/recipes/{id}/edit", requireSignIn(s.pageEditRecipe))
		r.Post("/recipes/{id}/edit", requireSignIn(s.submitEditRecipe))
		r.Post("/recipes/{id}/publish", requireSignIn(s.submitPublish))
		r.Post("/recipes/{id}/delete", requireSignIn(s.submitDeleteRecipe))
		r.Post("/recipes/{id}/favorite", requireSignIn(s.submitFavorite))
		r.Post("/recipes/{id}/like", requireSignIn(s.submitLike))
		r.Post("/recipes/{id}/comments", requireSignIn(s.submitComment))
		r.Post("/comments/{id}/edit", requireSignIn(s.submitEditComment))
		r.Post("/comments/{id}/delete", requireSignIn(s.submitDeleteComment))

		r.Get("/profile", requireSignIn(s.pageProfile))
		r.Post("/profile", requireSignIn(s.submitProfile))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				response.NotFound(w, "route not found", s.logger)
				return
			}
			s.pages.renderError(w, r, s.viewer(r), domainerrors.NotFound("page not found"), s.logger)
		})
	})
}

// viewer loads the signed-in user's profile for the navigation bar, or nil.
func (s *Server) viewer(r *http.Request) *service.ProfileView {
	userID := optionalUserID(r.Context())
	if userID == "" {
		return nil
	}
	view, err := s.services.Profile.Get(r.Context(), userID)
	if err != nil {
		s.logger.Warn("load viewer profile", "user_id", userID, "error", err)
		return nil
	}
	return view
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name, title string, content any) {
	s.pages.render(w, status, name, pageData{
		Title:   title,
		Viewer:  s.viewer(r),
		Path:    r.URL.Path,
		Notice:  r.URL.Query().Get("notice"),
		Content: content,
	}, s.logger)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.pages.renderError(w, r, s.viewer(r), err, s.logger)
}

// parseForm bounds and parses an urlencoded form body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
	if err := r.ParseForm(); err != nil {
		return domainerrors.Validation("invalid form submission")
	}
	return nil
}

// formFailure splits a service error into the message and field errors a form shows.
func formFailure(err error) (int, string, map[string]string) {
	status, env := response.Describe(err)
	var de *domainerrors.Error
	if errors.As(err, &de) {
		if fields, ok := de.Details.(map[string]string); ok {
			return status, env.Error, fields
		}
	}
	return status, env.Error, nil
}

// === Auth pages ===

type authForm struct {
	Email  string
	Next   string
	Error  string
	Fields map[string]string
}

func (s *Server) pageHome(w http.ResponseWriter, r *http.Request) {
	if optionalUserID(r.Context()) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	page, err := s.services.Recipe.Explore(r.Context(), store.PaginationParams{Limit: homeFeedSize})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cards, err := s.enricher.EnrichSummaries(r.Context(), page.Items)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "home", "", cards)
}

func (s *Server) pageLogin(w http.ResponseWriter, r *http.Request) {
	if optionalUserID(r.Context()) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.page(w, r, http.StatusOK, "login", "Sign in", authForm{Next: r.URL.Query().Get("next")})
}

func (s *Server) submitLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	form := authForm{Email: r.PostFormValue("email"), Next: r.PostFormValue("next")}
	resp, err := s.services.Auth.Login(r.Context(), service.LoginRequest{
		Email:    form.Email,
		Password: r.PostFormValue("password"),
		Client:   clientFromContext(r.Context()),
	})
	if err != nil {
		status, msg, fields := formFailure(err)
		form.Error, form.Fields = msg, fields
		s.page(w, r, status, "login", "Sign in", form)
		return
	}

	s.setSessionCookies(w, resp.SessionResponse)
	http.Redirect(w, r, safeRedirect(form.Next), http.StatusSeeOther)
}

func (s *Server) pageSignup(w http.ResponseWriter, r *http.Request) {
	if optionalUserID(r.Context()) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.page(w, r, http.StatusOK, "signup", "Create account", authForm{})
}

func (s *Server) submitSignup(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	form := authForm{Email: r.PostFormValue("email")}
	resp, err := s.services.Auth.Signup(r.Context(), service.SignupRequest{
		Email:           form.Email,
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Client:          clientFromContext(r.Context()),
	})
	if err != nil {
		status, msg, fields := formFailure(err)
		form.Error, form.Fields = msg, fields
		s.page(w, r, status, "signup", "Create account", form)
		return
	}

	s.setSessionCookies(w, resp.SessionResponse)
	http.Redirect(w, r, "/profile?notice=welcome", http.StatusSeeOther)
}

func (s *Server) submitLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID := getSessionID(r.Context()); sessionID != "" {
		if err := s.services.Auth.Logout(r.Context(), sessionID); err != nil {
			s.logger.Warn("logout", "session_id", sessionID, "error", err)
		}
	}
	s.clearSessionCookies(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// === Feed pages ===

type explorePage struct {
	Cards      []dto.RecipeCard
	NextCursor string
}

// feedPage is a filterable list with its "Showing X of Y" counts.
type feedPage struct {
	Heading              string
	Action               string
	EmptyText            string
	Cards                []dto.RecipeCard
	Shown                int
	Total                int
	State                filter.State
	PublishFilterEnabled bool
	Levels               []filter.Level
	MaxTimes             []filter.MaxTime
	Statuses             []filter.PublishStatus
}

type dashboardPage struct {
	Community []dto.RecipeCard
	Mine      []dto.RecipeCard
}

func (s *Server) pageExplore(w http.ResponseWriter, r *http.Request) {
	page, err := s.services.Recipe.Explore(r.Context(), store.PaginationParams{Cursor: r.URL.Query().Get("cursor")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cards, err := s.enricher.EnrichSummaries(r.Context(), page.Items)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "explore", "Explore", explorePage{Cards: cards, NextCursor: page.NextCursor})
}

func (s *Server) pageDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.services.Recipe.Dashboard(r.Context(), optionalUserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	all := append(append([]domain.RecipeSummary{}, dash.Community...), dash.Mine...)
	cards, err := s.enricher.EnrichSummaries(r.Context(), all)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "dashboard", "Dashboard", dashboardPage{
		Community: cards[:len(dash.Community)],
		Mine:      cards[len(dash.Community):],
	})
}

func (s *Server) pageSearch(w http.ResponseWriter, r *http.Request) {
	s.feedPage(w, r, feedPage{
		Heading:   "Search recipes",
		Action:    "/search",
		EmptyText: "No recipes match these filters.",
	}, func() ([]domain.RecipeSummary, error) {
		return s.services.Recipe.SearchSource(r.Context())
	})
}

func (s *Server) pageSaved(w http.ResponseWriter, r *http.Request) {
	s.feedPage(w, r, feedPage{
		Heading:   "Saved recipes",
		Action:    "/saved",
		EmptyText: "Nothing saved yet. Tap Save on a recipe to keep it here.",
	}, func() ([]domain.RecipeSummary, error) {
		return s.services.Recipe.Saved(r.Context(), optionalUserID(r.Context()))
	})
}

func (s *Server) pageMyRecipes(w http.ResponseWriter, r *http.Request) {
	s.feedPage(w, r, feedPage{
		Heading:              "My recipes",
		Action:               "/my-recipes",
		EmptyText:            "You have not written any recipes that match.",
		PublishFilterEnabled: true,
	}, func() ([]domain.RecipeSummary, error) {
		return s.services.Recipe.MyRecipes(r.Context(), optionalUserID(r.Context()))
	})
}

// feedPage runs the filter engine over the loaded feed with the state from the query string.
func (s *Server) feedPage(w http.ResponseWriter, r *http.Request, p feedPage, load func() ([]domain.RecipeSummary, error)) {
	q := r.URL.Query()
	status := ""
	if p.PublishFilterEnabled {
		status = q.Get("status")
	}
	state, err := filter.ParseState(q.Get("q"), q.Get("difficulty"), q.Get("max_time"), status)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recipes, err := load()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	feed := service.Filter(recipes, state, p.PublishFilterEnabled)
	cards, err := s.enricher.EnrichSummaries(r.Context(), feed.Recipes)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p.Cards = cards
	p.Shown, p.Total = feed.Shown, feed.Total
	p.State = feed.State
	p.Levels, p.MaxTimes, p.Statuses = filter.Levels, filter.MaxTimes, filter.Statuses

	s.page(w, r, http.StatusOK, "feed", p.Heading, p)
}

// === Recipe pages ===

// recipeFormValues holds the raw form fields so a rejected submission is shown back unchanged.
type recipeFormValues struct {
	Title        string
	Description  string
	ImageURL     string
	PrepTime     string
	CookTime     string
	Servings     string
	Difficulty   string
	Ingredients  string
	Instructions string
	NewTag       string
	TagIDs       []string
}

type recipeFormPage struct {
	Heading      string
	Action       string
	Editing      bool
	IsPublished  bool
	Values       recipeFormValues
	Tags         []*domain.Tag
	Difficulties []domain.Difficulty
	Error        string
	Fields       map[string]string
}

type recipePage struct {
	Detail      *domain.RecipeDetail
	TotalTime   int
	EditComment string
	CommentErr  string
}

func recipeValues(r *domain.Recipe, tags []*domain.Tag) recipeFormValues {
	v := recipeFormValues{
		Title:        r.Title,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		Difficulty:   string(r.Difficulty),
		Ingredients:  strings.Join(r.Ingredients, "\n"),
		Instructions: strings.Join(r.Instructions, "\n"),
	}
	if r.PrepTimeMinutes != nil {
		v.PrepTime = strconv.Itoa(*r.PrepTimeMinutes)
	}
	if r.CookTimeMinutes != nil {
		v.CookTime = strconv.Itoa(*r.CookTimeMinutes)
	}
	if r.Servings != nil {
		v.Servings = strconv.Itoa(*r.Servings)
	}
	for _, t := range tags {
		v.TagIDs = append(v.TagIDs, t.ID)
	}
	return v
}

// readRecipeForm parses the submitted recipe form. Number fields that do not
// parse are reported per field.
func readRecipeForm(r *http.Request) (recipeFormValues, service.RecipeInput, map[string]string) {
	v := recipeFormValues{
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		ImageURL:     r.PostFormValue("image_url"),
		PrepTime:     strings.TrimSpace(r.PostFormValue("prep_time_minutes")),
		CookTime:     strings.TrimSpace(r.PostFormValue("cook_time_minutes")),
		Servings:     strings.TrimSpace(r.PostFormValue("servings")),
		Difficulty:   r.PostFormValue("difficulty"),
		Ingredients:  r.PostFormValue("ingredients"),
		Instructions: r.PostFormValue("instructions"),
		NewTag:       r.PostFormValue("new_tag"),
		TagIDs:       r.PostForm["tag_ids"],
	}

	input := service.RecipeInput{
		Title:        v.Title,
		Description:  v.Description,
		ImageURL:     v.ImageURL,
		Difficulty:   v.Difficulty,
		Ingredients:  domain.SplitLines(v.Ingredients),
		Instructions: domain.SplitLines(v.Instructions),
		TagIDs:       v.TagIDs,
		NewTag:       v.NewTag,
	}
	// The box is only offered on drafts, so an unticked box keeps the current status.
	if r.PostFormValue("publish") != "" {
		input.Publish = domain.BoolPtr(true)
	}

	fields := map[string]string{}
	for name, raw := range map[string]string{
		"prep_time_minutes": v.PrepTime,
		"cook_time_minutes": v.CookTime,
		"servings":          v.Servings,
	} {
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "must be a whole number"
			continue
		}
		switch name {
		case "prep_time_minutes":
			input.PrepTimeMinutes = domain.IntPtr(n)
		case "cook_time_minutes":
			input.CookTimeMinutes = domain.IntPtr(n)
		case "servings":
			input.Servings = domain.IntPtr(n)
		}
	}
	if len(fields) == 0 {
		fields = nil
	}

	return v, input, fields
}

func (s *Server) recipeForm(w http.ResponseWriter, r *http.Request, status int, form recipeFormPage) {
	tags, err := s.services.Tag.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	form.Tags = tags
	form.Difficulties = domain.Difficulties
	s.page(w, r, status, "recipe_form", form.Heading, form)
}

func (s *Server) pageNewRecipe(w http.ResponseWriter, r *http.Request) {
	s.recipeForm(w, r, http.StatusOK, recipeFormPage{
		Heading: "New recipe",
		Action:  "/recipes/new",
		Values:  recipeFormValues{Difficulty: string(domain.DifficultyEasy)},
	})
}

func (s *Server) submitNewRecipe(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	form := recipeFormPage{Heading: "New recipe", Action: "/recipes/new"}
	values, input, fields := readRecipeForm(r)
	form.Values = values
	if fields != nil {
		form.Error, form.Fields = "Please fix the highlighted fields.", fields
		s.recipeForm(w, r, http.StatusBadRequest, form)
		return
	}

	recipe, err := s.services.Recipe.Create(r.Context(), optionalUserID(r.Context()), input)
	if err != nil {
		status, msg, fields := formFailure(err)
		if status >= http.StatusInternalServerError {
			s.fail(w, r, err)
			return
		}
		form.Error, form.Fields = msg, fields
		s.recipeForm(w, r, status, form)
		return
	}

	http.Redirect(w, r, "/recipes/"+recipe.ID, http.StatusSeeOther)
}

func (s *Server) pageRecipe(w http.ResponseWriter, r *http.Request) {
	detail, err := s.services.Recipe.Get(r.Context(), optionalUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "recipe", detail.Recipe.Title, recipePage{
		Detail:      detail,
		TotalTime:   detail.Recipe.TotalTime(),
		EditComment: r.URL.Query().Get("edit_comment"),
	})
}

func (s *Server) pageEditRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")
	recipe, tags, err := s.services.Recipe.GetForEdit(r.Context(), optionalUserID(r.Context()), recipeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recipeForm(w, r, http.StatusOK, recipeFormPage{
		Heading:     "Edit recipe",
		Action:      "/recipes/" + recipeID + "/edit",
		Editing:     true,
		IsPublished: recipe.IsPublished,
		Values:      recipeValues(recipe, tags),
	})
}

func (s *Server) submitEditRecipe(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	recipeID := chi.URLParam(r, "id")
	form := recipeFormPage{
		Heading:     "Edit recipe",
		Action:      "/recipes/" + recipeID + "/edit",
		Editing:     true,
		IsPublished: r.PostFormValue("was_published") != "",
	}
	values, input, fields := readRecipeForm(r)
	form.Values = values
	if fields != nil {
		form.Error, form.Fields = "Please fix the highlighted fields.", fields
		s.recipeForm(w, r, http.StatusBadRequest, form)
		return
	}

	recipe, err := s.services.Recipe.Update(r.Context(), optionalUserID(r.Context()), recipeID, input)
	if err != nil {
		status, msg, fields := formFailure(err)
		if status == http.StatusNotFound || status == http.StatusForbidden || status >= http.StatusInternalServerError {
			s.fail(w, r, err)
			return
		}
		form.Error, form.Fields = msg, fields
		s.recipeForm(w, r, status, form)
		return
	}

	http.Redirect(w, r, "/recipes/"+recipe.ID+"?notice=saved", http.StatusSeeOther)
}

func (s *Server) submitPublish(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.services.Recipe.Publish(r.Context(), optionalUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+recipe.ID+"?notice=published", http.StatusSeeOther)
}

func (s *Server) submitDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Recipe.Delete(r.Context(), optionalUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/my-recipes?notice=deleted", http.StatusSeeOther)
}

func (s *Server) submitFavorite(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")
	if _, err := s.services.Favorite.Toggle(r.Context(), optionalUserID(r.Context()), recipeID); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+recipeID, http.StatusSeeOther)
}

func (s *Server) submitLike(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")
	if _, err := s.services.Like.Toggle(r.Context(), optionalUserID(r.Context()), recipeID); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+recipeID, http.StatusSeeOther)
}

// === Comment actions ===

func (s *Server) submitComment(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	recipeID := chi.URLParam(r, "id")
	viewerID := optionalUserID(r.Context())
	if _, err := s.services.Comment.Add(r.Context(), viewerID, recipeID, r.PostFormValue("content")); err != nil {
		status, msg, _ := formFailure(err)
		if status != http.StatusBadRequest {
			s.fail(w, r, err)
			return
		}
		detail, derr := s.services.Recipe.Get(r.Context(), viewerID, recipeID)
		if derr != nil {
			s.fail(w, r, derr)
			return
		}
		s.page(w, r, status, "recipe", detail.Recipe.Title, recipePage{
			Detail:     detail,
			TotalTime:  detail.Recipe.TotalTime(),
			CommentErr: msg,
		})
		return
	}

	http.Redirect(w, r, "/recipes/"+recipeID+"#comments", http.StatusSeeOther)
}

func (s *Server) submitEditComment(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	comment, err := s.services.Comment.Edit(r.Context(), optionalUserID(r.Context()), chi.URLParam(r, "id"), r.PostFormValue("content"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+comment.RecipeID+"#comment-"+comment.ID, http.StatusSeeOther)
}

func (s *Server) submitDeleteComment(w http.ResponseWriter, r *http.Request) {
	recipeID, err := s.services.Comment.Delete(r.Context(), optionalUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+recipeID+"#comments", http.StatusSeeOther)
}

// === Profile ===

type profilePage struct {
	Profile *service.ProfileView
	Values  service.UpdateProfileRequest
	Error   string
	Fields  map[string]string
}

func (s *Server) pageProfile(w http.ResponseWriter, r *http.Request) {
	view, err := s.services.Profile.Get(r.Context(), optionalUserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "profile", "Profile", profilePage{
		Profile: view,
		Values: service.UpdateProfileRequest{
			Username:  view.Username,
			FullName:  view.FullName,
			AvatarURL: view.AvatarURL,
			Bio:       view.Bio,
		},
	})
}

func (s *Server) submitProfile(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	userID := optionalUserID(r.Context())
	req := service.UpdateProfileRequest{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FullName:  r.PostFormValue("full_name"),
		AvatarURL: strings.TrimSpace(r.PostFormValue("avatar_url")),
		Bio:       r.PostFormValue("bio"),
	}

	if _, err := s.services.Profile.Update(r.Context(), userID, req); err != nil {
		status, msg, fields := formFailure(err)
		if status >= http.StatusInternalServerError {
			s.fail(w, r, err)
			return
		}
		view, verr := s.services.Profile.Get(r.Context(), userID)
		if verr != nil {
			s.fail(w, r, verr)
			return
		}
		s.page(w, r, status, "profile", "Profile", profilePage{
			Profile: view,
			Values:  req,
			Error:   msg,
			Fields:  fields,
		})
		return
	}

	http.Redirect(w, r, "/profile?notice=saved", http.StatusSeeOther)
}
