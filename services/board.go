package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openparish/parishboard/models"
	"github.com/openparish/parishboard/utils"
)

// BoardService implements the board read and write paths on top of the
// persistence client.
type BoardService struct {
	db    *gorm.DB
	cache Cache
}

// NewBoardService creates a BoardService. A nil cache disables view
// caching without changing any other behavior.
func NewBoardService(db *gorm.DB, cache Cache) *BoardService {
	if cache == nil {
		cache = noopCache{}
	}
	return &BoardService{db: db, cache: cache}
}

// PostSummary is one row of a category listing.
type PostSummary struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

// PostPage is one page of a category listing plus the category total.
type PostPage struct {
	Posts      []PostSummary `json:"posts"`
	TotalCount int64         `json:"total_count"`
}

// PostDetail is a single post with attachments and ascending comments.
type PostDetail struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

// PostRef is a lightweight reference used for prev/next navigation.
type PostRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// ListPosts returns the page-th slice (1-indexed) of posts in category,
// newest first with id as the tie-break, plus the total count for the
// category. A persistence failure degrades to an empty page and zero
// count; callers cannot distinguish that from an empty category, which
// is a documented limitation of this read path.
func (s *BoardService) ListPosts(category string, page, pageSize int) PostPage {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var total int64
	if err := s.db.Model(&models.Post{}).Where("category = ?", category).Count(&total).Error; err != nil {
		logWarnf("count posts failed category=%s err=%v", category, err)
		return PostPage{Posts: []PostSummary{}}
	}

	var posts []models.Post
	err := s.db.Where("category = ?", category).
		Preload("Attachments").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		logWarnf("list posts failed category=%s err=%v", category, err)
		return PostPage{Posts: []PostSummary{}}
	}

	counts, err := s.commentCounts(posts)
	if err != nil {
		logWarnf("count comments failed category=%s err=%v", category, err)
		return PostPage{Posts: []PostSummary{}}
	}

	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, PostSummary{Post: p, CommentCount: counts[p.ID]})
	}
	return PostPage{Posts: summaries, TotalCount: total}
}

func (s *BoardService) commentCounts(posts []models.Post) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(posts))
	if len(posts) == 0 {
		return counts, nil
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	var rows []struct {
		PostID uint
		N      int64
	}
	err := s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	return counts, nil
}

// GetPostDetail fetches one post with its attachments and comments
// (creation ascending) and the comment count. Returns ErrNotFound when
// no such post exists.
func (s *BoardService) GetPostDetail(id uint) (*PostDetail, error) {
	var post models.Post
	err := s.db.Preload("Attachments").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post %d: %w", id, err)
	}
	return &PostDetail{Post: post, CommentCount: int64(len(post.Comments))}, nil
}

// GetAdjacentPosts finds the closest older ("previous") and newer
// ("next") posts in the same category, using the listing order
// (created_at, then id) so equal timestamps cannot produce drift. A
// missing neighbor stays nil; the lookup never wraps around.
func (s *BoardService) GetAdjacentPosts(id uint, category string) (prev, next *PostRef, err error) {
	var current models.Post
	if err := s.db.Select("id", "created_at").First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load post %d: %w", id, err)
	}

	var older models.Post
	errOlder := s.db.Select("id", "title").
		Where("category = ?", category).
		Where("created_at < ? OR (created_at = ? AND id < ?)", current.CreatedAt, current.CreatedAt, current.ID).
		Order("created_at DESC, id DESC").
		First(&older).Error
	if errOlder == nil {
		prev = &PostRef{ID: older.ID, Title: older.Title}
	} else if !errors.Is(errOlder, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("load previous post: %w", errOlder)
	}

	var newer models.Post
	errNewer := s.db.Select("id", "title").
		Where("category = ?", category).
		Where("created_at > ? OR (created_at = ? AND id > ?)", current.CreatedAt, current.CreatedAt, current.ID).
		Order("created_at ASC, id ASC").
		First(&newer).Error
	if errNewer == nil {
		next = &PostRef{ID: newer.ID, Title: newer.Title}
	} else if !errors.Is(errNewer, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("load next post: %w", errNewer)
	}

	return prev, next, nil
}

// IncrementViews bumps the view counter atomically; the counter never
// decreases.
func (s *BoardService) IncrementViews(id uint) error {
	return s.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// AttachmentInput describes one attachment to persist with a new post.
type AttachmentInput struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// CreatePostInput is the write-path payload for a new board entry.
type CreatePostInput struct {
	Title       string
	Content     string
	Author      string
	Category    string
	UserID      *uint
	Attachments []AttachmentInput
}

// CreatePost validates the input and persists the post together with
// all of its attachments in a single transaction. Either everything is
// written or nothing is.
func (s *BoardService) CreatePost(in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" {
		return nil, validationError("title is required")
	}
	if author == "" {
		return nil, validationError("author is required")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}
	if !models.ValidCategory(category) {
		return nil, validationError("unknown board category " + category)
	}

	post := models.Post{
		Title:    title,
		Content:  in.Content,
		Author:   author,
		Category: category,
		UserID:   in.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		for _, att := range in.Attachments {
			if strings.TrimSpace(att.FileURL) == "" {
				return validationError("attachment url is required")
			}
			fileType := att.FileType
			if fileType == "" {
				fileType = models.AttachmentFile
			}
			if !models.ValidAttachmentType(fileType) {
				return validationError("unknown attachment type " + fileType)
			}
			row := models.Attachment{
				PostID:   post.ID,
				FileURL:  att.FileURL,
				FileName: att.FileName,
				FileType: fileType,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			post.Attachments = append(post.Attachments, row)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.cache.InvalidateByPrefix(BoardListPrefix(category))
	return &post, nil
}

// CreateComment appends a comment to an existing post and invalidates
// the cached views the new comment affects.
func (s *BoardService) CreateComment(postID uint, author, content string) (*models.Comment, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, validationError("author is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError("content is required")
	}

	var post models.Post
	if err := s.db.Select("id", "category").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}

	comment := models.Comment{
		PostID:  post.ID,
		Author:  author,
		Content: content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.cache.InvalidateByPrefix(BoardDetailKey(post.Category, post.ID))
	s.cache.InvalidateByPrefix(BoardListPrefix(post.Category))
	return &comment, nil
}

// DeletePost removes a post with its comments and attachments in one
// transaction. Only the owner or an admin may delete; the cascade is
// explicit so it does not depend on foreign key enforcement.
func (s *BoardService) DeletePost(sess *Session, id uint) error {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load post %d: %w", id, err)
	}

	owner := sess != nil && post.UserID != nil && *post.UserID == sess.UserID
	if !owner && !sess.IsAdmin() {
		return ErrUnauthorized
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}

	s.cache.InvalidateByPrefix(BoardDetailKey(post.Category, post.ID))
	s.cache.InvalidateByPrefix(BoardListPrefix(post.Category))
	return nil
}

func logWarnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}
