package handlers

import (
	"context"
	"strings"

	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/repositories"
)

type stubIdentity struct {
	user models.User
	ok   bool
}

func (s stubIdentity) Resolve(context.Context) (models.User, bool) {
	return s.user, s.ok
}

func identityAs(user models.User) stubIdentity {
	return stubIdentity{user: user, ok: true}
}

func anonymous() stubIdentity {
	return stubIdentity{}
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(username string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + username, nil
}

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) UpdateProfile(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) Search(_ context.Context, keyword, excludeUserID string) ([]models.User, error) {
	var matches []models.User
	for _, user := range s.users {
		if user.ID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(keyword)) {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

type inMemoryPostStore struct {
	posts map[string]models.Post
	likes map[string]map[string]bool
}

func newInMemoryPostStore() *inMemoryPostStore {
	return &inMemoryPostStore{
		posts: make(map[string]models.Post),
		likes: make(map[string]map[string]bool),
	}
}

func (s *inMemoryPostStore) Create(_ context.Context, post models.Post) error {
	s.posts[post.ID] = post
	return nil
}

func (s *inMemoryPostStore) FindByID(_ context.Context, id, viewerID string) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, repositories.ErrNotFound
	}
	post.Liked = s.likes[id][viewerID]
	return post, nil
}

func (s *inMemoryPostStore) ListAll(_ context.Context, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	for id, post := range s.posts {
		post.Liked = s.likes[id][viewerID]
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *inMemoryPostStore) ListByUser(_ context.Context, userID, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	for id, post := range s.posts {
		if post.UserID != userID {
			continue
		}
		post.Liked = s.likes[id][viewerID]
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *inMemoryPostStore) Search(_ context.Context, keyword, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	for id, post := range s.posts {
		if strings.Contains(post.Title, keyword) || strings.Contains(post.Content, keyword) {
			post.Liked = s.likes[id][viewerID]
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *inMemoryPostStore) Update(_ context.Context, id, title, content string) error {
	post, ok := s.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Title = title
	post.Content = content
	s.posts[id] = post
	return nil
}

func (s *inMemoryPostStore) Delete(_ context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *inMemoryPostStore) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	post, ok := s.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[string]bool)
	}
	if s.likes[postID][userID] {
		delete(s.likes[postID], userID)
		post.LikesCount--
		s.posts[postID] = post
		return false, nil
	}
	s.likes[postID][userID] = true
	post.LikesCount++
	s.posts[postID] = post
	return true, nil
}

func (s *inMemoryPostStore) LikeUsers(_ context.Context, postID string) ([]models.User, error) {
	var users []models.User
	for userID := range s.likes[postID] {
		users = append(users, models.User{ID: userID})
	}
	return users, nil
}

type inMemoryCommentStore struct {
	comments map[string]models.Comment
}

func newInMemoryCommentStore() *inMemoryCommentStore {
	return &inMemoryCommentStore{comments: make(map[string]models.Comment)}
}

func (s *inMemoryCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *inMemoryCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *inMemoryCommentStore) ListForPost(_ context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (s *inMemoryCommentStore) ListForVideo(_ context.Context, videoID string) ([]models.Comment, error) {
	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (s *inMemoryCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type inMemoryVideoStore struct {
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) FindByFilePath(_ context.Context, filePath string) (models.Video, error) {
	for _, video := range s.videos {
		if video.FilePath == filePath {
			return video, nil
		}
	}
	return models.Video{}, repositories.ErrNotFound
}

func (s *inMemoryVideoStore) ListAll(context.Context) ([]models.Video, error) {
	var videos []models.Video
	for _, video := range s.videos {
		videos = append(videos, video)
	}
	return videos, nil
}

func (s *inMemoryVideoStore) ListByUploader(_ context.Context, uploaderID string) ([]models.Video, error) {
	var videos []models.Video
	for _, video := range s.videos {
		if video.UploaderID == uploaderID {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

func (s *inMemoryVideoStore) Search(_ context.Context, keyword string) ([]models.Video, error) {
	var videos []models.Video
	for _, video := range s.videos {
		if strings.Contains(video.Title, keyword) || strings.Contains(video.Description, keyword) {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type inMemoryFriendStore struct {
	edges map[string]models.Friendship
}

func newInMemoryFriendStore() *inMemoryFriendStore {
	return &inMemoryFriendStore{edges: make(map[string]models.Friendship)}
}

func (s *inMemoryFriendStore) Create(_ context.Context, friendship models.Friendship) error {
	for _, edge := range s.edges {
		if samePair(edge, friendship.UserID, friendship.FriendID) {
			return repositories.ErrConflict
		}
	}
	s.edges[friendship.ID] = friendship
	return nil
}

func (s *inMemoryFriendStore) FindByPair(_ context.Context, userID, friendID string) (models.Friendship, error) {
	for _, edge := range s.edges {
		if samePair(edge, userID, friendID) {
			return edge, nil
		}
	}
	return models.Friendship{}, repositories.ErrNotFound
}

func (s *inMemoryFriendStore) AcceptPending(_ context.Context, requesterID, recipientID string) error {
	for id, edge := range s.edges {
		if edge.UserID == requesterID && edge.FriendID == recipientID && edge.Status == models.FriendshipPending {
			edge.Status = models.FriendshipAccepted
			s.edges[id] = edge
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *inMemoryFriendStore) DeletePending(_ context.Context, requesterID, recipientID string) error {
	for id, edge := range s.edges {
		if edge.UserID == requesterID && edge.FriendID == recipientID && edge.Status == models.FriendshipPending {
			delete(s.edges, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *inMemoryFriendStore) DeleteEdge(_ context.Context, userID, friendID string) error {
	for id, edge := range s.edges {
		if samePair(edge, userID, friendID) {
			delete(s.edges, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *inMemoryFriendStore) Friends(_ context.Context, userID string) ([]models.User, error) {
	var users []models.User
	for _, edge := range s.edges {
		if edge.Status != models.FriendshipAccepted {
			continue
		}
		switch userID {
		case edge.UserID:
			users = append(users, models.User{ID: edge.FriendID})
		case edge.FriendID:
			users = append(users, models.User{ID: edge.UserID})
		}
	}
	return users, nil
}

func (s *inMemoryFriendStore) PendingReceived(_ context.Context, userID string) ([]models.User, error) {
	var users []models.User
	for _, edge := range s.edges {
		if edge.Status == models.FriendshipPending && edge.FriendID == userID {
			users = append(users, models.User{ID: edge.UserID})
		}
	}
	return users, nil
}

func (s *inMemoryFriendStore) PendingSent(_ context.Context, userID string) ([]models.User, error) {
	var users []models.User
	for _, edge := range s.edges {
		if edge.Status == models.FriendshipPending && edge.UserID == userID {
			users = append(users, models.User{ID: edge.FriendID})
		}
	}
	return users, nil
}

func samePair(edge models.Friendship, userID, friendID string) bool {
	return (edge.UserID == userID && edge.FriendID == friendID) ||
		(edge.UserID == friendID && edge.FriendID == userID)
}

type ingestorStub struct {
	enqueued []string
	err      error
}

func (s *ingestorStub) Enqueue(_ context.Context, videoID, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, videoID)
	return nil
}
