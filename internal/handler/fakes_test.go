package handler

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/service"
	"github.com/inkwell-blog/inkwell/internal/session"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStore struct {
	sessions map[string]*session.Session
	flashes  map[string][]string
	created  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: map[string]*session.Session{},
		flashes:  map[string][]string{},
	}
}

func (f *fakeStore) Create(context.Context) (*session.Session, error) {
	f.created++
	sess := &session.Session{ID: fmt.Sprintf("sess-%d", f.created)}
	f.sessions[sess.ID] = sess
	return &session.Session{ID: sess.ID}, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*session.Session, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (f *fakeStore) SetUser(_ context.Context, id string, userID uint) error {
	sess, ok := f.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.UserID = userID
	return nil
}

func (f *fakeStore) ClearUser(_ context.Context, id string) error {
	if sess, ok := f.sessions[id]; ok {
		sess.UserID = 0
	}
	return nil
}

func (f *fakeStore) AddFlash(_ context.Context, id, message string) error {
	f.flashes[id] = append(f.flashes[id], message)
	return nil
}

func (f *fakeStore) PopFlashes(_ context.Context, id string) ([]string, error) {
	flashes := f.flashes[id]
	delete(f.flashes, id)
	return flashes, nil
}

func (f *fakeStore) allFlashes() []string {
	var all []string
	for _, flashes := range f.flashes {
		all = append(all, flashes...)
	}
	return all
}

type fakeUserRepo struct {
	users map[uint]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type stubAuthService struct {
	user *model.User
	err  error
}

func (s *stubAuthService) Register(context.Context, service.RegisterInput) (*model.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Login(context.Context, service.LoginInput) (*model.User, error) {
	return s.user, s.err
}

type stubPostService struct {
	posts   map[uint]*model.Post
	deleted []uint
}

func (s *stubPostService) List(context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	for _, post := range s.posts {
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *stubPostService) Get(_ context.Context, id uint) (*model.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return post, nil
}

func (s *stubPostService) Create(_ context.Context, input service.PostInput, author *model.User) (*model.Post, error) {
	post := &model.Post{
		ID:       uint(len(s.posts) + 1),
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Body:     input.Body,
		ImageURL: input.ImageURL,
		AuthorID: author.ID,
		Author:   *author,
	}
	s.posts[post.ID] = post
	return post, nil
}

func (s *stubPostService) Update(_ context.Context, id uint, input service.PostInput, editor *model.User) (*model.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	post.Title = input.Title
	post.AuthorID = editor.ID
	return post, nil
}

func (s *stubPostService) Delete(_ context.Context, id uint) error {
	if _, ok := s.posts[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(s.posts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubCommentService struct {
	created []*model.Comment
	err     error
}

func (s *stubCommentService) Create(_ context.Context, postID uint, input service.CommentInput, author *model.User) (*model.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	comment := &model.Comment{
		ID:       uint(len(s.created) + 1),
		Text:     input.Text,
		PostID:   postID,
		AuthorID: author.ID,
	}
	s.created = append(s.created, comment)
	return comment, nil
}

type stubSearchService struct {
	hits []service.PostHit
}

func (s *stubSearchService) IndexPost(*model.Post) error { return nil }

func (s *stubSearchService) DeletePost(uint) error { return nil }

func (s *stubSearchService) Search(string) ([]service.PostHit, error) {
	return s.hits, nil
}

type testApp struct {
	router   *gin.Engine
	store    *fakeStore
	users    *fakeUserRepo
	auth     *stubAuthService
	posts    *stubPostService
	comments *stubCommentService
	search   *stubSearchService
}

func testTemplates() *template.Template {
	return template.Must(template.New("t").Parse(`
{{define "index.html"}}index:{{len .Posts}}{{end}}
{{define "post.html"}}post:{{.Post.Title}}{{end}}
{{define "make_post.html"}}form:{{.Error}}{{end}}
{{define "register.html"}}register:{{.Error}}{{end}}
{{define "login.html"}}login:{{.Error}}{{end}}
{{define "search.html"}}search:{{range .Hits}}[{{.Title}}]{{end}}{{end}}
{{define "error.html"}}{{.Code}}: {{.Message}}{{end}}
`))
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)

	app := &testApp{
		store:    newFakeStore(),
		users:    &fakeUserRepo{users: map[uint]*model.User{}},
		auth:     &stubAuthService{},
		posts:    &stubPostService{posts: map[uint]*model.Post{}},
		comments: &stubCommentService{},
		search:   &stubSearchService{},
	}

	authHandler := NewAuthHandler(app.auth, app.store)
	postHandler := NewPostHandler(app.posts, app.comments, app.search, nil, app.store)

	router := gin.New()
	router.SetHTMLTemplate(testTemplates())

	am := middleware.NewAuthMiddleware(app.store, app.users, time.Hour)
	router.Use(am.LoadSession())

	router.GET("/", postHandler.Index)
	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/post/:id", postHandler.Show)
	router.POST("/post/:id", postHandler.SubmitComment)
	router.GET("/search", postHandler.Search)
	router.GET("/feed.json", postHandler.Feed)

	adminGroup := router.Group("")
	adminGroup.Use(am.RequireAdmin())
	adminGroup.GET("/new-post", postHandler.ShowCreate)
	adminGroup.POST("/new-post", postHandler.Create)
	adminGroup.GET("/edit-post/:id", postHandler.ShowEdit)
	adminGroup.POST("/edit-post/:id", postHandler.Update)
	adminGroup.GET("/delete/:id", postHandler.Delete)

	app.router = router
	return app
}

func (a *testApp) loginAs(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()

	a.users.users[user.ID] = user

	sess, err := a.store.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.store.SetUser(context.Background(), sess.ID, user.ID))

	return &http.Cookie{Name: middleware.SessionCookie, Value: sess.ID}
}

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
