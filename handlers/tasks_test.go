package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mytodolist/config"
	"mytodolist/models"
	"mytodolist/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testApp struct {
	router *gin.Engine
	store  *utils.TaskStore
	task1  *models.Task
	task2  *models.Task
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	ctx := context.Background()
	db, err := utils.OpenDB(ctx, config.DatabaseConfig{
		Driver: utils.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tasks.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, utils.Migrate(ctx, db, utils.DriverSQLite, "up"))

	store := utils.NewTaskStore(db, utils.DriverSQLite)
	router, err := NewRouter(store, discardLogger())
	require.NoError(t, err)

	task1, err := store.AddTask(ctx, "Task 1")
	require.NoError(t, err)
	task2, err := store.AddTask(ctx, "Task 2")
	require.NoError(t, err)

	return &testApp{router: router, store: store, task1: task1, task2: task2}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) count(t *testing.T) int {
	t.Helper()
	n, err := a.store.CountTasks(context.Background())
	require.NoError(t, err)
	return n
}

func TestTaskListViewWithNoTasks(t *testing.T) {
	app := setupApp(t)
	require.NoError(t, app.store.DeleteAllTasks(context.Background()))

	w := app.get(MustURL(RouteTaskList))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No tasks found.")
	assert.NotContains(t, w.Body.String(), `<li class="task`)
}

func TestTaskListViewWithTasks(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskList))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Tasks</h1>")
	assert.Contains(t, body, ">Task 1</a>")
	assert.Contains(t, body, ">Task 2</a>")
	assert.Equal(t, 2, strings.Count(body, `<li class="task`))
	assert.NotContains(t, body, "No tasks found.")
}

func TestTaskDetailViewWithValidTask(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskDetail, app.task1.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), app.task1.Description)
	assert.Contains(t, w.Body.String(), "Status: Pending")
}

func TestTaskDetailViewWithInvalidTask(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{
		MustURL(RouteTaskDetail, 100),
		MustURL(RouteTaskDetail, 0),
		MustURL(RouteTaskDetail, "abc"),
	} {
		w := app.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "Not Found", path)
	}
}

func TestTaskAddViewWithValidForm(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskAdd), url.Values{"description": {"New task"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, MustURL(RouteTaskList), w.Header().Get("Location"))
	assert.Equal(t, 3, app.count(t))

	tasks, err := app.store.GetAllTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New task", tasks[len(tasks)-1].Description)
	assert.False(t, tasks[len(tasks)-1].Completed)
}

func TestTaskAddViewWithInvalidForm(t *testing.T) {
	app := setupApp(t)

	for _, description := range []string{"", "   "} {
		w := app.post(MustURL(RouteTaskAdd), url.Values{"description": {description}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, app.count(t))
		assert.Contains(t, w.Body.String(), "This field is required.")
		assert.Contains(t, w.Body.String(), `id="id_description"`)
	}
}

func TestTaskAddViewEchoesInvalidInput(t *testing.T) {
	app := setupApp(t)
	long := strings.Repeat("a", 201)

	w := app.post(MustURL(RouteTaskAdd), url.Values{"description": {long}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, app.count(t))
	assert.Contains(t, w.Body.String(), "Ensure this value has at most 200 characters (it has 201).")
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`value="%s"`, long))
}

func TestTaskAddViewWithGetRequest(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskAdd))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<form method="post" action="/tasks/add/">`)
	assert.Contains(t, w.Body.String(), `value=""`)
	assert.NotContains(t, w.Body.String(), `<ul class="errorlist">`)
	assert.Equal(t, 2, app.count(t))
}

func TestTaskEditViewGet(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskEdit, app.task1.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Edit task</h1>")
	assert.Contains(t, body, fmt.Sprintf(`action="/tasks/%d/edit/"`, app.task1.ID))
	assert.Contains(t, body, `value="Task 1"`)
}

func TestTaskEditViewPost(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskEdit, app.task1.ID), url.Values{"description": {"Updated Task"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, MustURL(RouteTaskDetail, app.task1.ID), w.Header().Get("Location"))

	task, err := app.store.GetTask(context.Background(), app.task1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Task", task.Description)
}

func TestTaskEditViewPostInvalid(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskEdit, app.task1.ID), url.Values{"description": {""}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	task, err := app.store.GetTask(context.Background(), app.task1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task 1", task.Description)
}

func TestTaskEditViewWithInvalidTask(t *testing.T) {
	app := setupApp(t)

	assert.Equal(t, http.StatusNotFound, app.get(MustURL(RouteTaskEdit, 100)).Code)
	w := app.post(MustURL(RouteTaskEdit, 100), url.Values{"description": {"Whatever"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, app.count(t))
}

func TestTaskDeleteViewWithValidTask(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskDelete, app.task1.ID), nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, MustURL(RouteTaskList), w.Header().Get("Location"))
	_, err := app.store.GetTask(context.Background(), app.task1.ID)
	assert.ErrorIs(t, err, utils.ErrTaskNotFound)
	assert.Equal(t, 1, app.count(t))
}

func TestTaskDeleteViewWithInvalidTask(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskDelete, 100), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, app.count(t))
}

func TestTaskDeleteViewRejectsGet(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskDelete, app.task1.ID))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 2, app.count(t))
}

func TestTaskCompleteMarksTaskAsCompleted(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskList))
	assert.Contains(t, w.Body.String(), app.task1.Description)
	assert.Contains(t, w.Body.String(), `<input type="checkbox"`)
	assert.NotContains(t, w.Body.String(), `<input type="checkbox" checked`)

	w = app.post(MustURL(RouteTaskComplete, app.task1.ID), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, MustURL(RouteTaskList), w.Header().Get("Location"))

	task, err := app.store.GetTask(context.Background(), app.task1.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	w = app.get(MustURL(RouteTaskList))
	assert.Equal(t, 1, strings.Count(w.Body.String(), `<input type="checkbox" checked`))
}

func TestTaskCompleteIsIdempotent(t *testing.T) {
	app := setupApp(t)

	for i := 0; i < 2; i++ {
		w := app.post(MustURL(RouteTaskComplete, app.task2.ID), nil)
		assert.Equal(t, http.StatusFound, w.Code)
	}

	task, err := app.store.GetTask(context.Background(), app.task2.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
}

func TestTaskCompleteWithInvalidTask(t *testing.T) {
	app := setupApp(t)

	assert.Equal(t, http.StatusNotFound, app.post(MustURL(RouteTaskComplete, 100), nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, app.get(MustURL(RouteTaskComplete, app.task1.ID)).Code)
}

func TestFlashMessageShownOnce(t *testing.T) {
	app := setupApp(t)

	w := app.post(MustURL(RouteTaskAdd), url.Values{"description": {"Flashy"}})
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, MustURL(RouteTaskList), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = app.do(req)

	assert.Contains(t, w.Body.String(), `<p class="flash">Task added successfully.</p>`)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "flash cookie is cleared after being shown")

	w = app.get(MustURL(RouteTaskList))
	assert.NotContains(t, w.Body.String(), `class="flash"`)
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	app := setupApp(t)

	w := app.get("/no/such/page/")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "The requested page was not found.")
}

func TestRequestIDHeader(t *testing.T) {
	app := setupApp(t)

	w := app.get(MustURL(RouteTaskList))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, MustURL(RouteTaskList), nil)
	req.Header.Set(RequestIDHeader, id)
	w = app.do(req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	w := app.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

// failingStore fails every call, or panics when panicking is set.
type failingStore struct {
	panicking bool
}

var errStoreDown = errors.New("database is down")

func (s failingStore) fail() error {
	if s.panicking {
		panic("store exploded")
	}
	return errStoreDown
}

func (s failingStore) GetAllTasks(context.Context) ([]models.Task, error) { return nil, s.fail() }
func (s failingStore) GetTask(context.Context, int) (*models.Task, error) { return nil, s.fail() }
func (s failingStore) AddTask(context.Context, string) (*models.Task, error) {
	return nil, s.fail()
}
func (s failingStore) UpdateTask(context.Context, int, string) error { return s.fail() }
func (s failingStore) CompleteTask(context.Context, int) error { return s.fail() }
func (s failingStore) DeleteTask(context.Context, int) error { return s.fail() }
func (s failingStore) Ping(context.Context) error { return s.fail() }

func TestStoreFailures(t *testing.T) {
	router, err := NewRouter(failingStore{}, discardLogger())
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusInternalServerError},
		{http.MethodGet, "/tasks/1/", http.StatusInternalServerError},
		{http.MethodPost, "/tasks/1/delete/", http.StatusInternalServerError},
		{http.MethodPost, "/tasks/1/complete/", http.StatusInternalServerError},
		{http.MethodGet, "/healthz", http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
	}

	req := httptest.NewRequest(http.MethodPost, "/tasks/add/", strings.NewReader("description=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	router, err := NewRouter(failingStore{panicking: true}, discardLogger())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}
