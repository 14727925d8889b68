// Package xconf 加载 YAML/JSON 配置文件并反序列化到带 koanf 标签的结构体。
//
// 存储客户端（xredis、xmongo）和 xlockctl 工具都通过它读取连接参数：
//
//	cfg, err := xconf.New("xlockctl.yaml")
//	var rc xredis.Config
//	err = cfg.Unmarshal("redis", &rc)
package xconf
