package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openparish/parishboard/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Post{}, &models.Attachment{}, &models.Comment{}, &models.VisitorLog{})
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedPost(t *testing.T, db *gorm.DB, category, title string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		Title:     title,
		Content:   "content of " + title,
		Author:    "tester",
		Category:  category,
		CreatedAt: createdAt,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestListPostsPagination(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedPost(t, db, "qna", fmt.Sprintf("question %d", i), base.Add(time.Duration(i)*time.Minute))
	}
	seedPost(t, db, "gallery", "unrelated", base)

	page1 := svc.ListPosts("qna", 1, 10)
	c.Assert(page1.TotalCount, qt.Equals, int64(12))
	c.Assert(page1.Posts, qt.HasLen, 10)

	page2 := svc.ListPosts("qna", 2, 10)
	c.Assert(page2.TotalCount, qt.Equals, int64(12))
	c.Assert(page2.Posts, qt.HasLen, 2)

	// Newest first across the page boundary.
	c.Assert(page1.Posts[0].Title, qt.Equals, "question 11")
	c.Assert(page2.Posts[1].Title, qt.Equals, "question 0")

	empty := svc.ListPosts("qna", 3, 10)
	c.Assert(empty.Posts, qt.HasLen, 0)
	c.Assert(empty.TotalCount, qt.Equals, int64(12))
}

func TestListPostsOrderTieBreak(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	same := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := seedPost(t, db, "free", "first", same)
	second := seedPost(t, db, "free", "second", same)

	page := svc.ListPosts("free", 1, 10)
	c.Assert(page.Posts, qt.HasLen, 2)
	// Equal timestamps fall back to id, higher id first.
	c.Assert(page.Posts[0].ID, qt.Equals, second.ID)
	c.Assert(page.Posts[1].ID, qt.Equals, first.ID)
}

func TestListPostsCommentCounts(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post := seedPost(t, db, "free", "commented", time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		_, err := svc.CreateComment(post.ID, "visitor", fmt.Sprintf("reply %d", i))
		c.Assert(err, qt.IsNil)
	}

	page := svc.ListPosts("free", 1, 10)
	c.Assert(page.Posts, qt.HasLen, 1)
	c.Assert(page.Posts[0].CommentCount, qt.Equals, int64(3))
}

func TestGetPostDetail(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post := seedPost(t, db, "qna", "detailed", time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC))
	_, err := svc.CreateComment(post.ID, "alice", "first reply")
	c.Assert(err, qt.IsNil)
	_, err = svc.CreateComment(post.ID, "bob", "second reply")
	c.Assert(err, qt.IsNil)

	detail, err := svc.GetPostDetail(post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(detail.Title, qt.Equals, "detailed")
	c.Assert(detail.CommentCount, qt.Equals, int64(2))
	c.Assert(detail.Comments, qt.HasLen, 2)
	// Comments read oldest first.
	c.Assert(detail.Comments[0].Author, qt.Equals, "alice")
	c.Assert(detail.Comments[1].Author, qt.Equals, "bob")

	_, err = svc.GetPostDetail(9999)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestGetAdjacentPosts(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	base := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	oldest := seedPost(t, db, "qna", "oldest", base)
	middle := seedPost(t, db, "qna", "middle", base.Add(time.Hour))
	newest := seedPost(t, db, "qna", "newest", base.Add(2*time.Hour))
	seedPost(t, db, "gallery", "other board", base.Add(30*time.Minute))

	prev, next, err := svc.GetAdjacentPosts(middle.ID, "qna")
	c.Assert(err, qt.IsNil)
	c.Assert(prev, qt.Not(qt.IsNil))
	c.Assert(prev.ID, qt.Equals, oldest.ID)
	c.Assert(next, qt.Not(qt.IsNil))
	c.Assert(next.ID, qt.Equals, newest.ID)

	// Boundaries do not wrap around.
	prev, next, err = svc.GetAdjacentPosts(newest.ID, "qna")
	c.Assert(err, qt.IsNil)
	c.Assert(prev.ID, qt.Equals, middle.ID)
	c.Assert(next, qt.IsNil)

	prev, next, err = svc.GetAdjacentPosts(oldest.ID, "qna")
	c.Assert(err, qt.IsNil)
	c.Assert(prev, qt.IsNil)
	c.Assert(next.ID, qt.Equals, middle.ID)

	_, _, err = svc.GetAdjacentPosts(9999, "qna")
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestGetAdjacentPostsEqualTimestamps(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	same := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	a := seedPost(t, db, "free", "a", same)
	b := seedPost(t, db, "free", "b", same)
	d := seedPost(t, db, "free", "d", same)

	prev, next, err := svc.GetAdjacentPosts(b.ID, "free")
	c.Assert(err, qt.IsNil)
	c.Assert(prev.ID, qt.Equals, a.ID)
	c.Assert(next.ID, qt.Equals, d.ID)
}

func TestIncrementViews(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post := seedPost(t, db, "free", "viewed", time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC))
	for i := 0; i < 5; i++ {
		c.Assert(svc.IncrementViews(post.ID), qt.IsNil)
	}

	var row models.Post
	c.Assert(db.First(&row, post.ID).Error, qt.IsNil)
	c.Assert(row.Views, qt.Equals, int64(5))
}

func TestCreatePostValidation(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	_, err := svc.CreatePost(CreatePostInput{Title: "  ", Author: "x"})
	c.Assert(err, qt.ErrorIs, ErrValidation)

	_, err = svc.CreatePost(CreatePostInput{Title: "t", Author: " "})
	c.Assert(err, qt.ErrorIs, ErrValidation)

	_, err = svc.CreatePost(CreatePostInput{Title: "t", Author: "x", Category: "no-such-board"})
	c.Assert(err, qt.ErrorIs, ErrValidation)

	post, err := svc.CreatePost(CreatePostInput{Title: "t", Author: "x"})
	c.Assert(err, qt.IsNil)
	c.Assert(post.Category, qt.Equals, models.DefaultCategory)
}

func TestCreatePostWithAttachments(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post, err := svc.CreatePost(CreatePostInput{
		Title:    "sunday bulletin",
		Author:   "office",
		Category: "free-board",
		Attachments: []AttachmentInput{
			{FileURL: "/static/uploads/images/a.png", FileName: "a.png", FileType: models.AttachmentImage},
			{FileURL: "https://example.org/live", FileName: "live stream", FileType: models.AttachmentLink},
			{FileURL: "/static/uploads/files/b.pdf", FileName: "b.pdf"},
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(post.Attachments, qt.HasLen, 3)
	// Omitted type defaults to FILE.
	c.Assert(post.Attachments[2].FileType, qt.Equals, models.AttachmentFile)

	var count int64
	c.Assert(db.Model(&models.Attachment{}).Where("post_id = ?", post.ID).Count(&count).Error, qt.IsNil)
	c.Assert(count, qt.Equals, int64(3))
}

func TestCreatePostAttachmentRollback(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	_, err := svc.CreatePost(CreatePostInput{
		Title:    "broken",
		Author:   "office",
		Category: "free-board",
		Attachments: []AttachmentInput{
			{FileURL: "/static/uploads/images/ok.png", FileName: "ok.png", FileType: models.AttachmentImage},
			{FileURL: "", FileName: "missing url"},
		},
	})
	c.Assert(err, qt.ErrorIs, ErrValidation)

	// Nothing of the failed write survives.
	var posts, attachments int64
	c.Assert(db.Model(&models.Post{}).Count(&posts).Error, qt.IsNil)
	c.Assert(db.Model(&models.Attachment{}).Count(&attachments).Error, qt.IsNil)
	c.Assert(posts, qt.Equals, int64(0))
	c.Assert(attachments, qt.Equals, int64(0))
}

func TestCreateComment(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post := seedPost(t, db, "free", "target", time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC))

	comment, err := svc.CreateComment(post.ID, "guest", "hello")
	c.Assert(err, qt.IsNil)
	c.Assert(comment.PostID, qt.Equals, post.ID)

	_, err = svc.CreateComment(post.ID, "", "hello")
	c.Assert(err, qt.ErrorIs, ErrValidation)

	_, err = svc.CreateComment(post.ID, "guest", "  ")
	c.Assert(err, qt.ErrorIs, ErrValidation)

	_, err = svc.CreateComment(9999, "guest", "hello")
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestDeletePostAuthorization(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	ownerID := uint(7)
	post := models.Post{
		Title:    "mine",
		Author:   "owner",
		Category: "free",
		UserID:   &ownerID,
	}
	c.Assert(db.Create(&post).Error, qt.IsNil)

	stranger := &Session{UserID: 8, Role: models.RoleUser}
	c.Assert(svc.DeletePost(stranger, post.ID), qt.Equals, ErrUnauthorized)

	owner := &Session{UserID: ownerID, Role: models.RoleUser}
	c.Assert(svc.DeletePost(owner, post.ID), qt.IsNil)

	c.Assert(svc.DeletePost(owner, post.ID), qt.Equals, ErrNotFound)
}

func TestDeletePostCascades(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewBoardService(db, nil)

	post, err := svc.CreatePost(CreatePostInput{
		Title:    "with children",
		Author:   "office",
		Category: "gallery",
		Attachments: []AttachmentInput{
			{FileURL: "/static/uploads/images/a.png", FileName: "a.png", FileType: models.AttachmentImage},
		},
	})
	c.Assert(err, qt.IsNil)
	_, err = svc.CreateComment(post.ID, "guest", "nice photo")
	c.Assert(err, qt.IsNil)

	admin := &Session{UserID: 1, Role: models.RoleAdmin}
	c.Assert(svc.DeletePost(admin, post.ID), qt.IsNil)

	var comments, attachments int64
	c.Assert(db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error, qt.IsNil)
	c.Assert(db.Model(&models.Attachment{}).Where("post_id = ?", post.ID).Count(&attachments).Error, qt.IsNil)
	c.Assert(comments, qt.Equals, int64(0))
	c.Assert(attachments, qt.Equals, int64(0))
}
