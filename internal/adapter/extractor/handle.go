// 包 extractor 从主页链接中取出平台用户名，纯字符串处理，不访问网络。
package extractor

import (
	"net/url"
	"strings"
)

// ExtractHandle 返回 rawURL 中 domainFragment 之后的第一个路径段
//
// 能解析出 host 时，host 必须包含 domainFragment；
// 解析失败或缺少 scheme 时退化为在原始字符串里查找 domainFragment。
func ExtractHandle(rawURL, domainFragment string) (string, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" || domainFragment == "" {
		return "", false
	}
	fragment := asciiLower(domainFragment)

	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		if !strings.Contains(asciiLower(u.Host), fragment) {
			return "", false
		}
		return firstSegment(u.Path)
	}

	// 兜底：github.com/alice 这类没有 scheme 的写法
	// asciiLower 不改变字节长度，下标可以直接用在 raw 上
	idx := strings.Index(asciiLower(raw), fragment)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(fragment):]
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	return firstSegment(rest)
}

// PathSegments 返回 URL 路径中非空的段，解析失败返回 nil
func PathSegments(rawURL string) []string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil
	}
	path := u.Path
	if u.Host == "" {
		// 没有 scheme 时 host 被当成了路径的一部分
		if i := strings.Index(path, "/"); i >= 0 {
			path = path[i:]
		} else {
			path = ""
		}
	}
	return segments(path)
}

// HostContains 判断链接的 host 是否包含片段，没有 scheme 时按原始字符串判断
func HostContains(rawURL, fragment string) bool {
	raw := strings.ToLower(strings.TrimSpace(rawURL))
	fragment = strings.ToLower(fragment)
	if raw == "" || fragment == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		return strings.Contains(u.Host, fragment)
	}
	host := raw
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.Contains(host, fragment)
}

// asciiLower 只转换 A-Z，其余字节原样保留
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func firstSegment(path string) (string, bool) {
	segs := segments(path)
	if len(segs) == 0 {
		return "", false
	}
	return segs[0], true
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
