package service

import (
	"context"
	"sort"

	"github.com/inkwell-blog/inkwell/internal/model"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}

	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakePostRepo struct {
	posts  map[uint]*model.Post
	nextID uint
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uint]*model.Post{}}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	for _, existing := range f.posts {
		if existing.Title == post.Title {
			return gorm.ErrDuplicatedKey
		}
	}

	f.nextID++
	post.ID = f.nextID
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, id uint) (*model.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *post
	return &clone, nil
}

func (f *fakePostRepo) FindByTitle(_ context.Context, title string) (*model.Post, error) {
	for _, post := range f.posts {
		if post.Title == title {
			clone := *post
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePostRepo) FindAll(_ context.Context) ([]*model.Post, error) {
	ids := make([]uint, 0, len(f.posts))
	for id := range f.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		clone := *f.posts[id]
		posts = append(posts, &clone)
	}
	return posts, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	if _, ok := f.posts[post.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range f.posts {
		if existing.ID != post.ID && existing.Title == post.Title {
			return gorm.ErrDuplicatedKey
		}
	}
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id uint) error {
	delete(f.posts, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[uint]*model.Comment
	nextID   uint
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[uint]*model.Comment{}}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	clone := *comment
	f.comments[comment.ID] = &clone
	return nil
}

func (f *fakeCommentRepo) FindByPostID(_ context.Context, postID uint) ([]*model.Comment, error) {
	var comments []*model.Comment
	for _, comment := range f.comments {
		if comment.PostID == postID {
			clone := *comment
			comments = append(comments, &clone)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

type fakeSearch struct {
	indexed []uint
	deleted []uint
	hits    []PostHit
}

func (f *fakeSearch) IndexPost(post *model.Post) error {
	f.indexed = append(f.indexed, post.ID)
	return nil
}

func (f *fakeSearch) DeletePost(id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSearch) Search(string) ([]PostHit, error) {
	return f.hits, nil
}
