package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 存储后端类型，对应配置项 storage.type
const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 上传校验用的MIME类型，"/"结尾的前缀形式匹配整个大类
const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeText        = "text/plain"
	MimeOctetStream = "application/octet-stream"
)

var (
	// AllowedVideoExtensions 模块视频允许的文件扩展名
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}

	// AllowedAttachmentTypes 讨论附件允许的MIME类型
	AllowedAttachmentTypes = []string{MimeImage, MimePDF, MimeText}
)
