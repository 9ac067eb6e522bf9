package envapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	"github.com/beka-birhanu/vinom-dungeon/game/gridworld"
	"github.com/beka-birhanu/vinom-dungeon/service"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultBoardSize = 10
	maxBoardSize     = 100
	traceWriteWait   = 5 * time.Second
)

// EnvController serves environment sessions.
type EnvController struct {
	sessions i.SessionManager
	defaults dungeon.Params
	logger   i.Logger
	upgrader websocket.Upgrader
}

// NewEnvController creates an EnvController. defaults are the generation parameters
// request overrides apply to.
func NewEnvController(sm i.SessionManager, defaults dungeon.Params, logger i.Logger) *EnvController {
	return &EnvController{
		sessions: sm,
		defaults: defaults,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// Harnesses are not browsers; the bearer token already authorized the request.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterPublic registers public routes.
func (ec *EnvController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (ec *EnvController) RegisterProtected(route *gin.RouterGroup) {
	envs := route.Group("/envs")
	{
		envs.POST("", ec.create)
		envs.POST("/:ID/reset", ec.reset)
		envs.POST("/:ID/step", ec.step)
		envs.GET("/:ID/vision", ec.vision)
		envs.GET("/:ID/trace", ec.trace)
		envs.DELETE("/:ID", ec.close)
	}

	levels := route.Group("/levels")
	{
		levels.GET("/:ID/board", ec.board)
	}
}

// create opens a session.
func (ec *EnvController) create(ctx *gin.Context) {
	var request CreateEnvRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	req := i.SessionRequest{Seed: request.Seed}
	if request.LevelID != nil {
		levelID, err := uuid.Parse(*request.LevelID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
			return
		}
		req.LevelID = &levelID
	}
	if request.Params != nil {
		p := request.Params.apply(ec.defaults)
		req.Params = &p
	}

	info, obs, err := ec.sessions.NewSession(ctx, req)
	if err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newSessionResponse(info, obs))
}

// reset starts a new episode.
func (ec *EnvController) reset(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	obs, err := ec.sessions.Reset(ctx, id)
	if err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"observation": newObservationResponse(obs)})
}

// step applies one action.
func (ec *EnvController) step(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	var request StepRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := ec.sessions.Step(ctx, id, gridworld.Action(*request.Action))
	if err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newStepResponse(t))
}

// vision returns the PNG vision map of the session's level.
func (ec *EnvController) vision(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ec.sessions.Vision(id, &buf); err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "image/png", buf.Bytes())
}

// trace streams the session's trace events over a websocket until the client leaves
// or the session is closed.
func (ec *EnvController) trace(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	events, cancel, err := ec.sessions.Subscribe(id)
	if err != nil {
		ec.fail(ctx, err)
		return
	}
	defer cancel()

	conn, err := ec.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ec.logger.Warning(fmt.Sprintf("upgrading trace stream of session %s: %s", id, err))
		return
	}
	defer conn.Close()

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case e, open := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(traceWriteWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(newTraceEventResponse(e)); err != nil {
				ec.logger.Warning(fmt.Sprintf("writing trace event of session %s: %s", id, err))
				return
			}
		}
	}
}

// close ends a session.
func (ec *EnvController) close(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	if err := ec.sessions.Close(id); err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// board returns the best episodes recorded on a level.
func (ec *EnvController) board(ctx *gin.Context) {
	levelID, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid level id"})
		return
	}

	n := defaultBoardSize
	if raw := ctx.Query("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxBoardSize {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("n must be within [1, %d]", maxBoardSize)})
			return
		}
	}

	scores, err := ec.sessions.Board(ctx, levelID, int64(n))
	if err != nil {
		ec.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"level_id": levelID.String(), "episodes": newBoardResponse(scores)})
}

func sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

// fail writes the status matching err.
func (ec *EnvController) fail(ctx *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		ec.logger.Error(fmt.Sprintf("%s %s: %s", ctx.Request.Method, ctx.FullPath(), err))
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, dmn.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, gridworld.ErrInvalidAction),
		errors.Is(err, dungeon.ErrInvalidDimensions),
		errors.Is(err, dungeon.ErrInvalidRoomCount),
		errors.Is(err, dungeon.ErrInvalidRoomSize),
		errors.Is(err, dungeon.ErrInvalidDensity),
		errors.Is(err, dungeon.ErrInvalidLandmark),
		errors.Is(err, dungeon.ErrParamsTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEpisodeEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
