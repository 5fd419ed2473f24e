// Wellness log HTTP handlers.
//
// Eight endpoints, one POST/GET pair per log type:
//   - /logs/meals, /logs/workouts, /logs/sleep, /logs/moods
//
// Reads are paginated newest-first. LoggedAt defaults to now when omitted.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// MealLogRequest is the JSON payload for logging a meal.
type MealLogRequest struct {
	Description string    `json:"description" binding:"required,min=1" example:"Oatmeal with berries"`
	Calories    int       `json:"calories" example:"420"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	LoggedAt    time.Time `json:"logged_at"`
}

// WorkoutLogRequest is the JSON payload for logging a workout.
type WorkoutLogRequest struct {
	Activity    string    `json:"activity" binding:"required,min=1" example:"running"`
	DurationMin int       `json:"duration_min" binding:"required,min=1" example:"30"`
	Intensity   string    `json:"intensity" example:"moderate"`
	LoggedAt    time.Time `json:"logged_at"`
}

// SleepLogRequest is the JSON payload for logging a night of sleep.
type SleepLogRequest struct {
	Hours    float64   `json:"hours" binding:"required,gt=0,lte=24" example:"7.5"`
	Quality  string    `json:"quality" example:"good"`
	LoggedAt time.Time `json:"logged_at"`
}

// MoodLogRequest is the JSON payload for a mood check-in.
type MoodLogRequest struct {
	Mood     string    `json:"mood" binding:"required,min=1" example:"calm"`
	Energy   int       `json:"energy" example:"7"`
	Note     string    `json:"note"`
	LoggedAt time.Time `json:"logged_at"`
}

// ListMealsResponse wraps a page of meal logs.
type ListMealsResponse struct {
	Meals      []domain.MealLog `json:"meals"`
	Pagination Pagination       `json:"pagination"`
}

// ListWorkoutsResponse wraps a page of workout logs.
type ListWorkoutsResponse struct {
	Workouts   []domain.WorkoutLog `json:"workouts"`
	Pagination Pagination          `json:"pagination"`
}

// ListSleepResponse wraps a page of sleep logs.
type ListSleepResponse struct {
	Sleep      []domain.SleepLog `json:"sleep"`
	Pagination Pagination        `json:"pagination"`
}

// ListMoodsResponse wraps a page of mood logs.
type ListMoodsResponse struct {
	Moods      []domain.MoodLog `json:"moods"`
	Pagination Pagination       `json:"pagination"`
}

// LogMeal godoc
// @ID          logMeal
// @Summary     Log a meal
// @Tags        Logs
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.MealLogRequest  true  "Meal payload"
// @Success     201  {object}  domain.MealLog
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/meals [post]
func (h *Handlers) LogMeal(c *gin.Context) {
	var req MealLogRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "description is required")
		return
	}

	m := &domain.MealLog{
		UserID:      userID(c),
		Description: strings.TrimSpace(req.Description),
		Calories:    req.Calories,
		ProteinG:    req.ProteinG,
		CarbsG:      req.CarbsG,
		FatG:        req.FatG,
		LoggedAt:    req.LoggedAt,
	}
	if err := h.wellnessSvc.AddMeal(c.Request.Context(), m); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListMeals godoc
// @ID          listMeals
// @Summary     List meal logs (paginated)
// @Tags        Logs
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListMealsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/meals [get]
func (h *Handlers) ListMeals(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.wellnessSvc.Meals(c.Request.Context(), userID(c), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListMealsResponse{Meals: items, Pagination: paginate(page, pageSize, total)})
}

// LogWorkout godoc
// @ID          logWorkout
// @Summary     Log a workout
// @Tags        Logs
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.WorkoutLogRequest  true  "Workout payload"
// @Success     201  {object}  domain.WorkoutLog
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/workouts [post]
func (h *Handlers) LogWorkout(c *gin.Context) {
	var req WorkoutLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "activity and duration_min are required")
		return
	}

	w := &domain.WorkoutLog{
		UserID:      userID(c),
		Activity:    strings.TrimSpace(req.Activity),
		DurationMin: req.DurationMin,
		Intensity:   req.Intensity,
		LoggedAt:    req.LoggedAt,
	}
	if err := h.wellnessSvc.AddWorkout(c.Request.Context(), w); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, w)
}

// ListWorkouts godoc
// @ID          listWorkouts
// @Summary     List workout logs (paginated)
// @Tags        Logs
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListWorkoutsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/workouts [get]
func (h *Handlers) ListWorkouts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.wellnessSvc.Workouts(c.Request.Context(), userID(c), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListWorkoutsResponse{Workouts: items, Pagination: paginate(page, pageSize, total)})
}

// LogSleep godoc
// @ID          logSleep
// @Summary     Log a night of sleep
// @Tags        Logs
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SleepLogRequest  true  "Sleep payload"
// @Success     201  {object}  domain.SleepLog
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/sleep [post]
func (h *Handlers) LogSleep(c *gin.Context) {
	var req SleepLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hours must be in (0, 24]")
		return
	}

	s := &domain.SleepLog{
		UserID:   userID(c),
		Hours:    req.Hours,
		Quality:  req.Quality,
		LoggedAt: req.LoggedAt,
	}
	if err := h.wellnessSvc.AddSleep(c.Request.Context(), s); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, s)
}

// ListSleep godoc
// @ID          listSleep
// @Summary     List sleep logs (paginated)
// @Tags        Logs
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListSleepResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/sleep [get]
func (h *Handlers) ListSleep(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.wellnessSvc.Sleep(c.Request.Context(), userID(c), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSleepResponse{Sleep: items, Pagination: paginate(page, pageSize, total)})
}

// LogMood godoc
// @ID          logMood
// @Summary     Log a mood check-in
// @Tags        Logs
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.MoodLogRequest  true  "Mood payload"
// @Success     201  {object}  domain.MoodLog
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/moods [post]
func (h *Handlers) LogMood(c *gin.Context) {
	var req MoodLogRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Mood) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mood is required")
		return
	}

	m := &domain.MoodLog{
		UserID:   userID(c),
		Mood:     strings.TrimSpace(req.Mood),
		Energy:   req.Energy,
		Note:     req.Note,
		LoggedAt: req.LoggedAt,
	}
	if err := h.wellnessSvc.AddMood(c.Request.Context(), m); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListMoods godoc
// @ID          listMoods
// @Summary     List mood check-ins (paginated)
// @Tags        Logs
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListMoodsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /logs/moods [get]
func (h *Handlers) ListMoods(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.wellnessSvc.Moods(c.Request.Context(), userID(c), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListMoodsResponse{Moods: items, Pagination: paginate(page, pageSize, total)})
}
