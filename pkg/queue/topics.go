// Package queue 定义文件领域的事件主题、负载与统一消息封装.
package queue

// 主题命名规范：fv.<域>.<动作>，发布后保持稳定.
const (
	TopicFileUploaded = "fv.file.uploaded" // 字节已存储且记录已提交
	TopicFileRenamed  = "fv.file.renamed"  // 所有者修改了文件名
	TopicFileDeleted  = "fv.file.deleted"  // 字节与记录均已删除
	TopicFileShared   = "fv.file.shared"   // 新增共享接收者
	TopicFileUnshared = "fv.file.unshared" // 移除共享接收者
)

// FileTopics 文件领域全部主题.
var FileTopics = []string{
	TopicFileUploaded, TopicFileRenamed, TopicFileDeleted,
	TopicFileShared, TopicFileUnshared,
}
