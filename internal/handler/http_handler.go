package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/middleware"
	"github.com/weiawesome/wes-chat/internal/service"
	"github.com/weiawesome/wes-chat/pkg/log"
	"github.com/weiawesome/wes-chat/pkg/response"
)

// Handler handles the REST surface of the chat server.
type Handler struct {
	messageService  service.MessageService
	chatRoomService service.ChatRoomService
	userService     service.UserService
	authMiddleware  *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	messageService service.MessageService,
	chatRoomService service.ChatRoomService,
	userService service.UserService,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		messageService:  messageService,
		chatRoomService: chatRoomService,
		userService:     userService,
		authMiddleware:  authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	// Public routes
	r.POST("/sign-up", h.SignUp)
	r.POST("/sign-in", h.SignIn)

	// Protected routes
	protected := r.Group("/")
	protected.Use(h.authMiddleware.RequireAuth())
	{
		protected.PATCH("/change-password", h.ChangePassword)
		protected.DELETE("/sign-out", h.SignOut)

		messages := protected.Group("/messages")
		{
			messages.GET("", h.ListMessages)
			messages.GET("/:id", h.GetMessage)
			messages.POST("", h.CreateMessage)
			messages.PATCH("/:id", h.UpdateMessage)
			messages.DELETE("/:id", h.DeleteMessage)
		}

		chatRooms := protected.Group("/chatrooms")
		{
			chatRooms.GET("", h.ListChatRooms)
			chatRooms.GET("/:id", h.GetChatRoom)
			chatRooms.POST("", h.CreateChatRoom)
			chatRooms.PATCH("/:id", h.UpdateChatRoom)
			chatRooms.DELETE("/:id", h.DeleteChatRoom)
		}
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps a service error onto the response taxonomy.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Unauthorized(c, "invalid or missing credentials")
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(c, "not the owner of this resource")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrValidationFailed):
		response.UnprocessableEntity(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}

func bindJSON(c *gin.Context, req interface{}, what string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msgf("invalid %s request", what)
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

// SignUp handles user registration.
func (h *Handler) SignUp(c *gin.Context) {
	var req domain.SignUpRequest
	if !bindJSON(c, &req, "sign-up") {
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "failed to sign up")
		return
	}

	response.Created(c, gin.H{"user": user})
}

// SignIn issues a fresh credential.
func (h *Handler) SignIn(c *gin.Context) {
	var req domain.SignInRequest
	if !bindJSON(c, &req, "sign-in") {
		return
	}

	result, err := h.userService.SignIn(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "failed to sign in")
		return
	}

	response.Created(c, result)
}

// ChangePassword handles password change.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req domain.ChangePasswordRequest
	if !bindJSON(c, &req, "change password") {
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), middleware.GetPrincipal(c), middleware.GetToken(c), &req)
	if err != nil {
		writeError(c, err, "failed to change password")
		return
	}

	response.NoContent(c)
}

// SignOut revokes the presented credential.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.userService.SignOut(c.Request.Context(), middleware.GetPrincipal(c), middleware.GetToken(c)); err != nil {
		writeError(c, err, "failed to sign out")
		return
	}

	response.NoContent(c)
}

type messageBody struct {
	Message domain.CreateMessageRequest `json:"message"`
}

type chatRoomBody struct {
	ChatRoom domain.CreateChatRoomRequest `json:"chatroom"`
}

type messagePatchBody struct {
	Message service.Patch `json:"message"`
}

type chatRoomPatchBody struct {
	ChatRoom service.Patch `json:"chatroom"`
}

func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.messageService.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	response.Success(c, gin.H{"messages": messages})
}

func (h *Handler) GetMessage(c *gin.Context) {
	msg, err := h.messageService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get message")
		return
	}

	response.Success(c, gin.H{"message": msg})
}

func (h *Handler) CreateMessage(c *gin.Context) {
	var body messageBody
	if !bindJSON(c, &body, "create message") {
		return
	}

	msg, err := h.messageService.Create(c.Request.Context(), middleware.GetPrincipal(c), &body.Message)
	if err != nil {
		writeError(c, err, "failed to create message")
		return
	}

	response.Created(c, gin.H{"message": msg})
}

func (h *Handler) UpdateMessage(c *gin.Context) {
	var body messagePatchBody
	if !bindJSON(c, &body, "update message") {
		return
	}

	if err := h.messageService.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), body.Message); err != nil {
		writeError(c, err, "failed to update message")
		return
	}

	response.NoContent(c)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	if err := h.messageService.Delete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete message")
		return
	}

	response.NoContent(c)
}

func (h *Handler) ListChatRooms(c *gin.Context) {
	rooms, err := h.chatRoomService.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list chat rooms")
		return
	}
	if rooms == nil {
		rooms = []domain.ChatRoom{}
	}

	response.Success(c, gin.H{"chatrooms": rooms})
}

func (h *Handler) GetChatRoom(c *gin.Context) {
	room, err := h.chatRoomService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get chat room")
		return
	}

	response.Success(c, gin.H{"chatroom": room})
}

func (h *Handler) CreateChatRoom(c *gin.Context) {
	var body chatRoomBody
	if !bindJSON(c, &body, "create chat room") {
		return
	}

	room, err := h.chatRoomService.Create(c.Request.Context(), middleware.GetPrincipal(c), &body.ChatRoom)
	if err != nil {
		writeError(c, err, "failed to create chat room")
		return
	}

	response.Created(c, gin.H{"chatroom": room})
}

func (h *Handler) UpdateChatRoom(c *gin.Context) {
	var body chatRoomPatchBody
	if !bindJSON(c, &body, "update chat room") {
		return
	}

	if err := h.chatRoomService.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), body.ChatRoom); err != nil {
		writeError(c, err, "failed to update chat room")
		return
	}

	response.NoContent(c)
}

func (h *Handler) DeleteChatRoom(c *gin.Context) {
	if err := h.chatRoomService.Delete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete chat room")
		return
	}

	response.NoContent(c)
}
