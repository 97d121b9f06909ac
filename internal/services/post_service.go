package services

import (
	"log"
	"time"

	"scribe/internal/models"
	"scribe/internal/repositories"
)

// PostEventPublisher publishes post lifecycle events to a message broker.
// *rabbitmq.Client satisfies this; a nil publisher disables events.
type PostEventPublisher interface {
	PublishPostEvent(event string, payload map[string]interface{}) error
}

// PostService handles business logic related to posts.
type PostService struct {
	postRepo  repositories.PostRepository
	publisher PostEventPublisher
}

// NewPostService creates a new PostService. publisher may be nil, in
// which case lifecycle events are skipped.
func NewPostService(postRepo repositories.PostRepository, publisher PostEventPublisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// GetAllPosts retrieves all posts.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	return s.postRepo.GetAll()
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id string) (*models.Post, error) {
	return s.postRepo.GetByID(id)
}

// CreatePost creates a post on behalf of the authenticated author. The
// author id comes exclusively from the session; any user id in the
// request body is ignored. Event publication is best effort: a broker
// failure is logged and never fails the request.
func (s *PostService) CreatePost(req *models.CreatePostRequest, authorID string) (*models.Post, error) {
	post := &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		UserID:    authorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		payload := map[string]interface{}{
			"postID": post.ID,
			"userID": post.UserID,
			"title":  post.Title,
		}
		if err := s.publisher.PublishPostEvent("post.created", payload); err != nil {
			log.Printf("Warning: Failed to publish post created event for post %s: %v", post.ID, err)
		}
	}

	return post, nil
}

// UpdatePost applies a partial title/content update to an existing post.
func (s *PostService) UpdatePost(id string, req *models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	post.UpdatedAt = time.Now()

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deletes a post by its ID.
func (s *PostService) DeletePost(id string) (bool, error) {
	return s.postRepo.Delete(id)
}
