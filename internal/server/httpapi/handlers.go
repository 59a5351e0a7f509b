package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mviktors/minichat/internal/common"
	"github.com/mviktors/minichat/internal/server/auth"
	"github.com/mviktors/minichat/internal/server/models"
)

const sessionCookie = "chat_token"

type userResp struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	LoggedInUntil time.Time `json:"logged_in_until"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:            u.ID,
		Username:      u.Username,
		LoggedInUntil: u.LoggedInUntil,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type messageResp struct {
	ID        int64     `json:"id"`
	Msg       string    `json:"msg"`
	Author    userResp  `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMessageResp(m *models.Message) messageResp {
	return messageResp{
		ID:        m.ID,
		Msg:       m.Msg,
		Author:    toUserResp(m.Author),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (s *Server) renderError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.logger.Error(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err.Error(),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) health(c *gin.Context) {
	if err := s.chat.Ping(c.Request.Context()); err != nil {
		s.logger.Error(c.Request.Context(), "health check failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	user, err := s.chat.Login(c.Request.Context(), req.Username)
	if err != nil {
		s.renderError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret, s.sessionValidity)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.SetCookie(sessionCookie, token, int(s.sessionValidity.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"access_token": token, "user": toUserResp(user)})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": toUserResp(currentUser(c))})
}

func (s *Server) listMessages(c *gin.Context) {
	msgs, err := s.chat.FindAllMessages(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		data = append(data, toMessageResp(m))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

type createMessageReq struct {
	Msg string `json:"msg" binding:"required"`
}

func (s *Server) createMessage(c *gin.Context) {
	var req createMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	msg, err := s.chat.AddMessage(c.Request.Context(), req.Msg, currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toMessageResp(msg)})
}

func (s *Server) getMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	msg, err := s.chat.FindMessage(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toMessageResp(msg)})
}

func (s *Server) deleteMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.chat.DeleteMessage(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := s.chat.FindUser(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toUserResp(user)})
}
