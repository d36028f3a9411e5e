package ptr

// Ptr возвращает указатель на копию v
func Ptr[T any](v T) *T {
	return &v
}
