// Package fonts 解析字体来源：内置的 Go 字体或磁盘上的 TTF/OTF 文件。
package fonts
