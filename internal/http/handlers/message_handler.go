// Message HTTP handlers.
//
//   - POST   /messages         (send; returns status "sent" at once)
//   - GET    /messages         (full history, weak ETag, optional limit)
//   - GET    /messages/search  (ranked text search)
//   - DELETE /messages/{id}    (delete and cancel pending transitions)
//   - GET    /messages/events  (server-sent status changes)
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/search"
	"github.com/tbourn/thoughts-chat/internal/utils"
)

// PostMessageRequest is the payload for POST /messages.
type PostMessageRequest struct {
	Text   string `json:"text" binding:"required" example:"hi"`
	UserID int64  `json:"user_id" binding:"required,min=1" example:"1"`
}

// PostMessageResponse wraps the stored message.
type PostMessageResponse struct {
	Message *domain.Message `json:"message"`
}

// ListMessagesResponse is the body of GET /messages.
type ListMessagesResponse struct {
	Messages []domain.MessageView `json:"messages"`
}

// SearchMessagesResponse is the body of GET /messages/search.
type SearchMessagesResponse struct {
	Results []search.Result `json:"results"`
}

// maxSearchResults caps the k query parameter.
const maxSearchResults = 50

// DeleteMessageResponse reports whether a message was removed.
type DeleteMessageResponse struct {
	Deleted bool `json:"deleted"`
}

// messagesETag derives a weak validator from the collection stats. Count
// catches inserts and deletes; the latest change time catches status writes.
func messagesETag(st domain.Stats) string {
	var ts int64
	if st.LastChanged != nil {
		ts = st.LastChanged.UnixNano()
	}
	return fmt.Sprintf(`W/"messages:%d:%d"`, st.Count, ts)
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message
// @Description Stores the message with status "sent" and schedules delivered (+1s) and read (+3s).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.PostMessageRequest  true  "Message"
// @Success     201   {object}  handlers.PostMessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Empty or too long"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown sender"
// @Failure     503   {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text and user_id required")
		return
	}
	m, err := h.msgs.Send(c.Request.Context(), req.Text, req.UserID)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, PostMessageResponse{Message: m})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages
// @Description Returns all messages oldest first, joined with their sender. Supports If-None-Match.
// @Tags        Messages
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       limit          query   int     false  "Keep only the latest N"  minimum(1)
// @Success     200  {object}  handlers.ListMessagesResponse
// @Header      200  {string}  ETag  "Weak ETag for the collection"
// @Success     304  {string}  string  "Not Modified"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if st, err := h.msgs.Stats(ctx); err == nil {
		etag := messagesETag(st)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.msgs.List(ctx)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	items = utils.Last(items, utils.AtoiDefault(c.Query("limit"), 0))
	ok(c, http.StatusOK, ListMessagesResponse{Messages: items})
}

// SearchMessages godoc
// @ID          searchMessages
// @Summary     Search messages
// @Description Ranks messages by word overlap with q, best first.
// @Tags        Messages
// @Produce     json
// @Param       q    query     string  true   "Search text"
// @Param       k    query     int     false  "Maximum results (default 10, max 50)"  minimum(1)  maximum(50)
// @Success     200  {object}  handlers.SearchMessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty query"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /messages/search [get]
func (h *Handlers) SearchMessages(c *gin.Context) {
	k := utils.AtoiDefault(c.Query("k"), search.DefaultK)
	switch {
	case k <= 0:
		k = search.DefaultK
	case k > maxSearchResults:
		k = maxSearchResults
	}
	res, err := h.msgs.Search(c.Request.Context(), c.Query("q"), k)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	if res == nil {
		res = []search.Result{}
	}
	ok(c, http.StatusOK, SearchMessagesResponse{Results: res})
}

// DeleteMessage godoc
// @ID          deleteMessage
// @Summary     Delete a message
// @Description Cancels any pending status transitions and removes the message. Unknown ids report deleted=false.
// @Tags        Messages
// @Produce     json
// @Param       id   path      int  true  "Message id"  minimum(1)
// @Success     200  {object}  handlers.DeleteMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Router      /messages/{id} [delete]
func (h *Handlers) DeleteMessage(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidID, "message id must be a positive integer")
		return
	}
	deleted, err := h.msgs.Delete(c.Request.Context(), id)
	if err != nil {
		failErr(c, err, ErrCodeDeleteFailed)
		return
	}
	ok(c, http.StatusOK, DeleteMessageResponse{Deleted: deleted})
}

// StreamEvents godoc
// @ID          streamEvents
// @Summary     Stream status changes
// @Description Server-sent events. A "ready" event opens the stream; each "status" event carries {message_id, status, at}. Slow readers drop events and should re-list.
// @Tags        Messages
// @Produce     text/event-stream
// @Success     200  {object}  notify.Event
// @Router      /messages/events [get]
func (h *Handlers) StreamEvents(c *gin.Context) {
	ch := h.events.Stream(c.Request.Context(), h.eventBuffer)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", "ok")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		ev, open := <-ch
		if !open {
			return false
		}
		c.SSEvent("status", ev)
		return true
	})
}
