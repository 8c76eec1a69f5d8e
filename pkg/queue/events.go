package queue

import "github.com/ThreeDotsLabs/watermill/message"

// ShareTopic 共享变更对应的主题.
func ShareTopic(shared bool) string {
	if shared {
		return TopicFileShared
	}

	return TopicFileUnshared
}

// ParseFileDeleted 解析 fv.file.deleted 消息.
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}

// ParseFileUploaded 解析 fv.file.uploaded 消息.
func ParseFileUploaded(msg *message.Message) (Message[FileUploadedPayload], error) {
	return ParseWatermillMessage[FileUploadedPayload](msg)
}
