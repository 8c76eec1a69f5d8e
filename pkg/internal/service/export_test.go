package service

// WithNameChecker 替换上传时分配文件名所用的占用检查.
func (s *FileService) WithNameChecker(names NameChecker) *FileService {
	s.alloc = NewAllocator(names)

	return s
}
