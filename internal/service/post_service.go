package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// displayDateFormat is the long-form date shown on post pages
// (e.g. "April 05, 2024").
const displayDateFormat = "January 02, 2006"

type PostInput struct {
	Title    string `form:"title" binding:"required,max=250"`
	Subtitle string `form:"subtitle" binding:"required,max=250"`
	Body     string `form:"body" binding:"required"`
	ImageURL string `form:"img_url" binding:"omitempty,url,max=500"`
}

type PostService interface {
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	Create(ctx context.Context, input PostInput, author *model.User) (*model.Post, error)
	Update(ctx context.Context, id uint, input PostInput, editor *model.User) (*model.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postService struct {
	repo      repository.PostRepository
	search    SearchService
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewPostService(repo repository.PostRepository, search SearchService) PostService {
	return &postService{
		repo:      repo,
		search:    search,
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	return s.repo.FindAll(ctx)
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return post, nil
}

func (s *postService) Create(ctx context.Context, input PostInput, author *model.User) (*model.Post, error) {
	if input.ImageURL == "" {
		return nil, apperror.New(http.StatusBadRequest, "a header image is required", apperror.ErrInvalidInput)
	}

	if err := s.ensureTitleFree(ctx, input.Title, 0); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Date:     s.now().Format(displayDateFormat),
		Body:     s.sanitizer.Sanitize(input.Body),
		ImageURL: input.ImageURL,
		AuthorID: author.ID,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrTitleTaken
		}
		return nil, err
	}

	post.Author = *author
	s.indexPost(post)

	return post, nil
}

// Update overwrites title, subtitle, image and body, and reassigns the post
// to whoever performed the edit. The display date is left as created.
func (s *postService) Update(ctx context.Context, id uint, input PostInput, editor *model.User) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ImageURL == "" {
		input.ImageURL = post.ImageURL
	}

	if err := s.ensureTitleFree(ctx, input.Title, post.ID); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Subtitle = input.Subtitle
	post.Body = s.sanitizer.Sanitize(input.Body)
	post.ImageURL = input.ImageURL
	post.AuthorID = editor.ID
	post.Author = *editor

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrTitleTaken
		}
		return nil, err
	}

	s.indexPost(post)

	return post, nil
}

func (s *postService) Delete(ctx context.Context, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeletePost(post.ID); err != nil {
			log.Printf("failed to remove post %d from search index: %v", post.ID, err)
		}
	}

	return nil
}

func (s *postService) ensureTitleFree(ctx context.Context, title string, selfID uint) error {
	existing, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return apperror.ErrTitleTaken
	}

	return nil
}

// indexPost is best effort: a search outage must never fail a write.
func (s *postService) indexPost(post *model.Post) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexPost(post); err != nil {
		log.Printf("failed to index post %d: %v", post.ID, err)
	}
}
