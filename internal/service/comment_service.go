package service

import (
	"context"

	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
)

type CommentInput struct {
	Text string `form:"comment" binding:"required"`
}

type CommentService interface {
	Create(ctx context.Context, postID uint, input CommentInput, author *model.User) (*model.Comment, error)
}

type commentService struct {
	comments  repository.CommentRepository
	posts     PostService
	sanitizer *bluemonday.Policy
}

func NewCommentService(comments repository.CommentRepository, posts PostService) CommentService {
	return &commentService{
		comments:  comments,
		posts:     posts,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create inserts a comment by an authenticated author on an existing post.
// Anonymous attempts never reach the database.
func (s *commentService) Create(ctx context.Context, postID uint, input CommentInput, author *model.User) (*model.Comment, error) {
	if author == nil || author.ID == 0 {
		return nil, apperror.ErrLoginRequired
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Text:     s.sanitizer.Sanitize(input.Text),
		AuthorID: author.ID,
		PostID:   post.ID,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = *author

	return comment, nil
}
