package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"today/internal/server/store"
	"today/internal/service"
	"today/internal/task"
)

// sessionToken returns the token from the session cookie or an
// Authorization: Bearer header.
func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(SessionCookie)
	return token
}

// requireUser resolves the session user or aborts with 401.
func (s *Server) requireUser(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := s.sessions.Parse(sessionToken(c))
	if err != nil {
		abortMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	revoked, err := s.store.SessionRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("session lookup failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error checking session")
		return
	}
	if revoked {
		abortMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.store.User(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		abortMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		s.logger.Error("user lookup failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error loading user")
		return
	}

	c.Set(userKey, user)
	c.Set(sessionKey, claims)
	c.Next()
}

func sessionUser(c *gin.Context) service.User {
	return c.MustGet(userKey).(service.User)
}

func (s *Server) beginLogin(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)

	if raw := c.Query("redirect"); raw != "" {
		target, err := loopbackRedirect(raw)
		if err != nil {
			abortMessage(c, http.StatusBadRequest, err.Error())
			return
		}
		c.SetCookie(redirectCookie, target.String(), stateMaxAge, "/auth", "", false, true)
	} else {
		c.SetCookie(redirectCookie, "", -1, "/auth", "", false, true)
	}

	state := uuid.NewString()
	c.SetCookie(stateCookie, state, stateMaxAge, "/auth", "", false, true)
	c.Redirect(http.StatusFound, s.auth.AuthCodeURL(state))
}

func (s *Server) completeLogin(c *gin.Context) {
	ctx := c.Request.Context()
	c.SetSameSite(http.SameSiteLaxMode)

	state, _ := c.Cookie(stateCookie)
	c.SetCookie(stateCookie, "", -1, "/auth", "", false, true)
	if state == "" || c.Query("state") != state {
		s.metrics.Login(false)
		abortMessage(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := c.Query("code")
	if code == "" || c.Query("error") != "" {
		s.metrics.Login(false)
		abortMessage(c, http.StatusUnauthorized, "Authentication failed")
		return
	}

	profile, err := s.auth.Exchange(ctx, code)
	if err != nil {
		s.metrics.Login(false)
		s.logger.Warn("google sign-in failed", "error", err)
		abortMessage(c, http.StatusUnauthorized, "Authentication failed")
		return
	}

	user, err := s.store.UpsertUser(ctx, profile)
	if err != nil {
		s.logger.Error("user upsert failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error saving user")
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		s.logger.Error("session issue failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error creating session")
		return
	}
	s.metrics.Login(true)
	s.logger.Info("signed in", "user", user.ID)

	c.SetCookie(SessionCookie, token, int(s.sessions.TTL().Seconds()), "/", "", false, true)

	target := s.cfg.ClientURL
	if raw, _ := c.Cookie(redirectCookie); raw != "" {
		c.SetCookie(redirectCookie, "", -1, "/auth", "", false, true)
		if u, err := loopbackRedirect(raw); err == nil {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	c.Redirect(http.StatusFound, target)
}

func (s *Server) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, sessionUser(c))
}

func (s *Server) logout(c *gin.Context) {
	ctx := c.Request.Context()

	if claims, err := s.sessions.Parse(sessionToken(c)); err == nil {
		if err := s.store.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			s.logger.Error("session revoke failed", "error", err)
			abortMessage(c, http.StatusInternalServerError, "Error ending session")
			return
		}
	}

	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) listTodos(c *gin.Context) {
	todos, err := s.store.ListTodos(c.Request.Context(), sessionUser(c).ID)
	if err != nil {
		s.logger.Error("list todos failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error fetching todos")
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) createTodo(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := s.store.CreateTodo(c.Request.Context(), sessionUser(c).ID, req)
	if errors.Is(err, task.ErrEmptyTitle) {
		abortMessage(c, http.StatusBadRequest, "Title is required")
		return
	}
	if err != nil {
		s.logger.Error("create todo failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error creating todo")
		return
	}
	s.metrics.Mutation("create")
	c.JSON(http.StatusCreated, todo)
}

func (s *Server) updateTodo(c *gin.Context) {
	var upd service.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		abortMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := s.store.UpdateTodo(c.Request.Context(), sessionUser(c).ID, c.Param("id"), upd)
	switch {
	case errors.Is(err, store.ErrNotFound):
		abortMessage(c, http.StatusNotFound, "Todo not found")
		return
	case errors.Is(err, task.ErrEmptyTitle):
		abortMessage(c, http.StatusBadRequest, "Title is required")
		return
	case err != nil:
		s.logger.Error("update todo failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error updating todo")
		return
	}
	s.metrics.Mutation("update")
	c.JSON(http.StatusOK, todo)
}

func (s *Server) deleteTodo(c *gin.Context) {
	err := s.store.DeleteTodo(c.Request.Context(), sessionUser(c).ID, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		abortMessage(c, http.StatusNotFound, "Todo not found")
		return
	}
	if err != nil {
		s.logger.Error("delete todo failed", "error", err)
		abortMessage(c, http.StatusInternalServerError, "Error deleting todo")
		return
	}
	s.metrics.Mutation("delete")
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}
