package auth

// RepositoryManager exposes the repositories the auth package needs
type RepositoryManager interface {
	Validate() error
	MustValidate()
	Users() Users
}
